package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/life-coach/backend/internal/analysis/emotion"
	"github.com/zhouzirui/life-coach/backend/internal/model/chat"
	"github.com/zhouzirui/life-coach/backend/internal/service/ai"
	"github.com/zhouzirui/life-coach/backend/internal/service/history"
)

// ErrEmptyMessage rejects blank input before any stream is opened.
var ErrEmptyMessage = errors.New("message must not be empty")

// EventSink delivers stream events to one connected client. A Send error
// means the client is gone and the session must abort without committing.
type EventSink interface {
	Send(event chat.StreamEvent) error
}

// Completer opens one streaming completion request against the upstream model.
type Completer interface {
	StreamCompletion(ctx context.Context, messages []chat.ContextMessage) (ai.TokenStream, error)
}

// Classifier maps free text to one emotion label.
type Classifier func(text string) emotion.Label

// Session 负责驱动一次完整的用户回合：校验输入、确定情绪、构建上下文、
// 转发上游流式回复，并在上游正常结束后提交完整的一轮对话。
// Each session is a fresh value; sessions share nothing but the history store.
type Session struct {
	id       string
	store    history.Store
	upstream Completer
	classify Classifier
}

// NewSession creates the per-request session. A nil classifier falls back to
// the keyword classifier.
func NewSession(store history.Store, upstream Completer, classify Classifier) *Session {
	if classify == nil {
		classify = emotion.Classify
	}
	return &Session{
		id:       uuid.NewString(),
		store:    store,
		upstream: upstream,
		classify: classify,
	}
}

// Validate rejects empty or whitespace-only input. Transports call it before
// opening the event channel so the failure can be a plain HTTP error.
func Validate(message string) error {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// Run drives one turn end to end over an already-open sink. Partial replies
// are never persisted: the turn is committed only after the upstream stream
// reaches its sentinel. All failures past this point are reported to the
// client in-band as an error event.
func (s *Session) Run(ctx context.Context, sink EventSink, message, clientEmotion string) error {
	if err := Validate(message); err != nil {
		s.sendError(sink, "message must not be empty")
		return err
	}
	message = strings.TrimSpace(message)

	// Prefer the label the client supplied; classify only when it gave none.
	label := emotion.Label(clientEmotion)
	if !emotion.Valid(clientEmotion) {
		label = s.classify(message)
	}

	turns, err := s.store.ReadAll(ctx)
	if err != nil {
		// An unreadable history must not block a new conversation.
		log.Printf("[relay] session=%s reading history failed, continuing with empty log: %v", s.id, err)
		turns = nil
	}

	stream, err := s.upstream.StreamCompletion(ctx, ai.BuildContext(turns, message, label))
	if err != nil {
		log.Printf("[relay] session=%s upstream handshake failed: %v", s.id, err)
		s.sendError(sink, "failed to reach the completion service")
		return err
	}
	defer stream.Close()

	startedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if err := sink.Send(chat.StreamEvent{Type: chat.EventStart, Emotion: string(label), Timestamp: startedAt}); err != nil {
		return fmt.Errorf("client channel closed: %w", err)
	}

	var reply strings.Builder
	for {
		delta, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			log.Printf("[relay] session=%s upstream stream failed: %v", s.id, recvErr)
			s.sendError(sink, "the reply stream was interrupted")
			return recvErr
		}

		reply.WriteString(delta)
		if err := sink.Send(chat.StreamEvent{Type: chat.EventChunk, Content: delta}); err != nil {
			return fmt.Errorf("client channel closed: %w", err)
		}
	}

	turn := chat.Turn{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		User:      message,
		Assistant: reply.String(),
		Emotion:   string(label),
	}

	if reply.Len() == 0 {
		log.Printf("[relay] session=%s upstream produced an empty reply, nothing to commit", s.id)
	} else if err := s.store.Append(ctx, turn); err != nil {
		// The user already holds the full reply; losing it from history is
		// logged rather than surfaced.
		log.Printf("[relay] session=%s failed to commit turn: %v", s.id, err)
	}

	if err := sink.Send(chat.StreamEvent{
		Type:      chat.EventEnd,
		Message:   reply.String(),
		Timestamp: turn.Timestamp,
		Emotion:   string(label),
	}); err != nil {
		return fmt.Errorf("client channel closed: %w", err)
	}

	log.Printf("[relay] session=%s completed, reply length=%d", s.id, reply.Len())
	return nil
}

func (s *Session) sendError(sink EventSink, message string) {
	if err := sink.Send(chat.StreamEvent{Type: chat.EventError, Error: message}); err != nil {
		log.Printf("[relay] session=%s failed to deliver error event: %v", s.id, err)
	}
}
