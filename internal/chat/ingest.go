package chat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"campus-chat/internal/metrics"
	"campus-chat/internal/store"
	"campus-chat/models"
)

// Identifier syntax shared by user and group IDs.
var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Ingest validates inbound sends and writes them durably before anything is
// shown to anyone. A message that fails the write is treated as never having
// happened; only the canonical persisted record is handed to the dispatcher.
type Ingest struct {
	messages store.MessageStore
	groups   store.GroupStore
}

func NewIngest(messages store.MessageStore, groups store.GroupStore) *Ingest {
	return &Ingest{messages: messages, groups: groups}
}

// Send validates and persists a group message, returning the canonical
// record with its assigned ID and server timestamp.
func (s *Ingest) Send(ctx context.Context, senderID, groupID, text string) (*models.Message, error) {
	body, err := validateBody(text)
	if err != nil {
		return nil, err
	}
	if !idRegex.MatchString(senderID) {
		return nil, validationErr("malformed sender id")
	}
	if !idRegex.MatchString(groupID) {
		return nil, validationErr("malformed group id")
	}

	if _, err := s.groups.GetGroup(ctx, groupID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
		}
		return nil, fmt.Errorf("lookup group: %w", err)
	}

	msg := &models.Message{
		Kind:     models.KindGroup,
		GroupID:  groupID,
		SenderID: senderID,
		Body:     body,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}
	metrics.MessagesPersisted.WithLabelValues(string(models.KindGroup)).Inc()
	return msg, nil
}

// SendDirect validates and persists a direct message.
func (s *Ingest) SendDirect(ctx context.Context, senderID, receiverID, text string) (*models.Message, error) {
	body, err := validateBody(text)
	if err != nil {
		return nil, err
	}
	if !idRegex.MatchString(senderID) {
		return nil, validationErr("malformed sender id")
	}
	if !idRegex.MatchString(receiverID) {
		return nil, validationErr("malformed receiver id")
	}
	if senderID == receiverID {
		return nil, validationErr("receiver equals sender")
	}

	msg := &models.Message{
		Kind:       models.KindDirect,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}
	metrics.MessagesPersisted.WithLabelValues(string(models.KindDirect)).Inc()
	return msg, nil
}

func validateBody(text string) (string, error) {
	body := strings.TrimSpace(text)
	if body == "" {
		return "", validationErr("empty message body")
	}
	return body, nil
}
