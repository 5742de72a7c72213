package session

import "docqa/internal/models"

// Conversation is the per-session chat history, bounded to Max messages.
// When the bound is exceeded the oldest messages are dropped first.
type Conversation struct {
	Messages []models.Message
	Max      int
}

func (c *Conversation) AddUserMessage(content string) {
	c.add("user", content)
}

func (c *Conversation) AddAssistantMessage(content string) {
	c.add("assistant", content)
}

func (c *Conversation) add(role, content string) {
	c.Messages = append(c.Messages, models.Message{Role: role, Content: content})
	if c.Max > 0 && len(c.Messages) > c.Max {
		c.Messages = c.Messages[len(c.Messages)-c.Max:]
	}
}

func (c *Conversation) Clear() {
	c.Messages = nil
}
