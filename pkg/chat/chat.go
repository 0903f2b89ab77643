// Package chat implements the assistant's text conversations: threads and
// messages persisted in kv, retrieval-augmented prompting over the
// knowledge base, and completion calls to the model.
package chat

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/morganstate-cs/morganai/pkg/kb"
)

// DefaultSummaryLength caps Summarize output in characters.
const DefaultSummaryLength = 500

// Retriever fetches context passages for a question. *kb.Service
// implements it.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]kb.Passage, error)
}

// Reply is the outcome of one Ask.
type Reply struct {
	ThreadID string
	Text     string
	Passages []kb.Passage
}

// Service answers user questions in persistent threads.
type Service struct {
	completer Completer
	threads   *ThreadStore
	retriever Retriever
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRetriever attaches the knowledge base used to ground answers.
func WithRetriever(r Retriever) Option {
	return func(s *Service) { s.retriever = r }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a chat service.
func New(completer Completer, threads *ThreadStore, opts ...Option) *Service {
	s := &Service{
		completer: completer,
		threads:   threads,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Threads exposes the underlying thread store.
func (s *Service) Threads() *ThreadStore { return s.threads }

// resolveThread loads the thread, creating one when threadID is empty.
func (s *Service) resolveThread(ctx context.Context, userID, threadID string) (*Thread, error) {
	if threadID == "" {
		return s.threads.CreateThread(ctx, userID, "")
	}
	return s.threads.GetThread(ctx, userID, threadID)
}

// buildPrompts assembles the transcript for one question: the system
// prompt, retrieved context as a second system message, the recent
// history, and finally the question itself.
func (s *Service) buildPrompts(ctx context.Context, userID, threadID, question string) ([]Prompt, []kb.Passage, error) {
	prompts := []Prompt{{Role: RoleSystem, Content: SystemPrompt}}

	var passages []kb.Passage
	if s.retriever != nil {
		var err error
		passages, err = s.retriever.Retrieve(ctx, question)
		if err != nil {
			// Retrieval trouble degrades the answer but should not kill it.
			s.logger.Error("context retrieval failed", "error", err)
			passages = nil
		}
		if len(passages) > 0 {
			prompts = append(prompts, Prompt{
				Role:    RoleSystem,
				Content: "Context from knowledge base:\n" + kb.BuildContext(passages),
			})
		}
	}

	history, err := s.threads.History(ctx, userID, threadID)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range history {
		prompts = append(prompts, Prompt{Role: m.Role, Content: m.Content})
	}
	prompts = append(prompts, Prompt{Role: RoleUser, Content: question})
	return prompts, passages, nil
}

// Ask answers one question. With an empty threadID a new thread is
// created; the question and the answer are stored once the model
// responds. Callers that want a user-facing message for a failed model
// call should show FallbackReply.
func (s *Service) Ask(ctx context.Context, userID, threadID, question string) (*Reply, error) {
	thread, err := s.resolveThread(ctx, userID, threadID)
	if err != nil {
		return nil, err
	}
	prompts, passages, err := s.buildPrompts(ctx, userID, thread.ID, question)
	if err != nil {
		return nil, err
	}

	text, err := s.completer.Complete(ctx, prompts, Params{})
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, userID, thread.ID, question, text); err != nil {
		return nil, err
	}
	s.logger.Info("question answered",
		"user", userID, "thread", thread.ID, "passages", len(passages))
	return &Reply{ThreadID: thread.ID, Text: text, Passages: passages}, nil
}

// AskStream is Ask with an incremental answer. The returned thread ID is
// valid immediately; the messages are stored after the stream completes
// without error.
func (s *Service) AskStream(ctx context.Context, userID, threadID, question string) (string, iter.Seq2[string, error], error) {
	thread, err := s.resolveThread(ctx, userID, threadID)
	if err != nil {
		return "", nil, err
	}
	prompts, _, err := s.buildPrompts(ctx, userID, thread.ID, question)
	if err != nil {
		return "", nil, err
	}

	seq := func(yield func(string, error) bool) {
		var full strings.Builder
		for chunk, err := range s.completer.CompleteStream(ctx, prompts, Params{}) {
			if err != nil {
				yield("", err)
				return
			}
			full.WriteString(chunk)
			if !yield(chunk, nil) {
				return
			}
		}
		if err := s.record(ctx, userID, thread.ID, question, full.String()); err != nil {
			yield("", err)
		}
	}
	return thread.ID, seq, nil
}

// record stores the question and the answer as a user/assistant pair.
func (s *Service) record(ctx context.Context, userID, threadID, question, answer string) error {
	if _, err := s.threads.AppendMessage(ctx, userID, threadID, RoleUser, question); err != nil {
		return err
	}
	_, err := s.threads.AppendMessage(ctx, userID, threadID, RoleAssistant, answer)
	return err
}

// Summarize condenses a thread into at most maxLength characters.
// maxLength <= 0 means DefaultSummaryLength.
func (s *Service) Summarize(ctx context.Context, userID, threadID string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = DefaultSummaryLength
	}
	msgs, err := s.threads.Messages(ctx, userID, threadID)
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "", fmt.Errorf("chat: thread %s has no messages", threadID)
	}

	var transcript strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&transcript, "%s: %s\n", m.Role, m.Content)
	}
	return s.completer.Complete(ctx, []Prompt{
		{
			Role:    RoleSystem,
			Content: fmt.Sprintf("Summarize the following conversation in %d characters or less", maxLength),
		},
		{Role: RoleUser, Content: transcript.String()},
	}, Params{Temperature: 0.5, MaxTokens: 200})
}
