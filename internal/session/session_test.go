package session

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConversationBounded(t *testing.T) {
	c := Conversation{Max: 20}
	for i := 0; i < 11; i++ {
		c.AddUserMessage(fmt.Sprintf("q%d", i))
		c.AddAssistantMessage(fmt.Sprintf("a%d", i))
	}
	if len(c.Messages) != 20 {
		t.Fatalf("expected 20 messages, got %d", len(c.Messages))
	}
	// Oldest turn (q0/a0) evicted, order of the rest preserved.
	if c.Messages[0].Content != "q1" || c.Messages[0].Role != "user" {
		t.Fatalf("unexpected oldest message: %+v", c.Messages[0])
	}
	if last := c.Messages[19]; last.Content != "a10" || last.Role != "assistant" {
		t.Fatalf("unexpected newest message: %+v", last)
	}
}

func TestConversationClear(t *testing.T) {
	c := Conversation{Max: 20}
	c.AddUserMessage("q")
	c.Clear()
	if len(c.Messages) != 0 {
		t.Fatalf("expected empty history")
	}
}

func TestStoreReusesSessionByCookie(t *testing.T) {
	st := NewStore("docqa_session", 20)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	first := st.Get(w, r)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(cookies[0])
	second := st.Get(httptest.NewRecorder(), r2)
	if first != second {
		t.Fatalf("expected same session for same cookie")
	}
}

func TestStoreDrop(t *testing.T) {
	st := NewStore("docqa_session", 20)
	w := httptest.NewRecorder()
	sess := st.Get(w, httptest.NewRequest(http.MethodGet, "/", nil))
	st.Drop(sess.ID)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(w.Result().Cookies()[0])
	if again := st.Get(httptest.NewRecorder(), r); again == sess {
		t.Fatalf("expected a fresh session after drop")
	}
}
