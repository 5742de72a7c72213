package answer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"docqa/internal/providers"
	"docqa/internal/util"
	"docqa/internal/vector"
)

const stuffPrompt = "Use the following pieces of context to answer the question at the end. " +
	"If you don't know the answer, just say that you don't know; do not make up an answer."

// Answerer retrieves the chunks most relevant to a question and forwards them
// with the question to a chat model in a single stuffed prompt.
type Answerer struct {
	providers *providers.Manager
	topK      int
}

func New(pm *providers.Manager, topK int) *Answerer {
	if topK <= 0 {
		topK = 4
	}
	return &Answerer{providers: pm, topK: topK}
}

// Answer returns the model's raw text. The store must be the session's
// current index; a nil or empty store means no document has been ingested.
func (a *Answerer) Answer(ctx context.Context, question string, store *vector.Store) (string, error) {
	if store == nil || store.Len() == 0 {
		return "", util.ErrNoIndex
	}

	queryVec, err := a.embedQuestion(ctx, question)
	if err != nil {
		if errors.Is(err, providers.ErrKeyMissing) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", util.ErrAnswerUnavailable, err)
	}

	results := store.Search(queryVec, a.topK)
	contextSnippets := make([]string, 0, len(results))
	for _, r := range results {
		contextSnippets = append(contextSnippets, r.Chunk.Text)
	}

	var lastErr error
	for _, idx := range a.providers.PreferredLLMOrder() {
		prov, ref := a.providers.LLMProviderByIndex(idx)
		resp, _, err := prov.Generate(ctx, providers.GenerateRequest{
			Operation: "ask_answer",
			Prompt:    stuffPrompt + "\n\nQuestion: " + question,
			Context:   contextSnippets,
		})
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			return strings.TrimSpace(resp.Text), nil
		}
		if err != nil {
			log.Printf("answer: provider %s failed (%s): %v", ref.Name, providers.ClassifyError(err), err)
		}
		lastErr = err
	}
	if lastErr != nil && errors.Is(lastErr, providers.ErrKeyMissing) {
		return "", lastErr
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("model returned empty answer")
	}
	return "", fmt.Errorf("%w: %w", util.ErrAnswerUnavailable, lastErr)
}

func (a *Answerer) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	var lastErr error
	for _, idx := range a.providers.PreferredEmbedOrder() {
		prov, _ := a.providers.EmbedProviderByIndex(idx)
		vectors, _, err := prov.Embed(ctx, providers.EmbedRequest{
			Operation: "ask_query_embed",
			Inputs:    []string{question},
		})
		if err == nil && len(vectors) == 1 {
			return vectors[0], nil
		}
		if err == nil {
			err = fmt.Errorf("provider returned %d vectors for query", len(vectors))
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no embedding providers configured")
	}
	return nil, lastErr
}
