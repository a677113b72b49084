package chat

import (
	"context"
	"fmt"

	"campus-chat/internal/metrics"
	"campus-chat/internal/store"
	"campus-chat/models"
)

// History serves reverse-chronological pages of a room's or conversation's
// message history. Page 1 is the newest pageSize messages; scrolling back
// requests higher page numbers.
type History struct {
	messages    store.MessageStore
	defaultSize int
	maxSize     int
}

func NewHistory(messages store.MessageStore, defaultSize, maxSize int) *History {
	return &History{messages: messages, defaultSize: defaultSize, maxSize: maxSize}
}

// Page returns one history slice with its pagination metadata. Messages
// within the page are in ascending creation order. A page number beyond the
// available range yields an empty page with HasMore=false, not an error.
func (h *History) Page(ctx context.Context, ref models.RoomRef, page, pageSize int) (*models.HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = h.defaultSize
	}
	if pageSize > h.maxSize {
		pageSize = h.maxSize
	}
	metrics.HistoryRequests.Inc()

	total, err := h.messages.Count(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	meta := models.Pagination{
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalMessages: total,
		HasMore:       page < totalPages,
	}

	if total == 0 || page > totalPages {
		meta.HasMore = false
		return &models.HistoryPage{Messages: []models.Message{}, Pagination: meta}, nil
	}

	// Newest-first query, then reverse so the page reads oldest-first.
	msgs, err := h.messages.Messages(ctx, ref, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	return &models.HistoryPage{Messages: msgs, Pagination: meta}, nil
}
