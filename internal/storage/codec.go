package storage

import (
	"encoding/json"
	"fmt"

	"github.com/techscope/hypecycle/pkg/types"
)

// StockInfoStream is the internal stream key under which ticker
// fundamentals are stored. It is not one of the five evidence streams;
// fundamentals ride along with the finance stream's price bars.
const StockInfoStream types.Stream = "stock_info"

// RecordRow is one evidence record encoded for persistence: the natural
// upstream identifier plus the JSON payload.
type RecordRow struct {
	ID      string
	Payload []byte
}

// EncodeRecords marshals records into rows keyed by their natural IDs.
// Records with an empty ID are rejected so upserts stay well-defined.
func EncodeRecords[T any](items []T, id func(T) string) ([]RecordRow, error) {
	rows := make([]RecordRow, 0, len(items))
	for _, item := range items {
		key := id(item)
		if key == "" {
			return nil, fmt.Errorf("%w: record has no identifier", ErrInvalidInput)
		}
		payload, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal record %s: %w", key, err)
		}
		rows = append(rows, RecordRow{ID: key, Payload: payload})
	}
	return rows, nil
}

// DecodeRecords unmarshals stored payloads back into typed records.
func DecodeRecords[T any](payloads [][]byte) ([]T, error) {
	items := make([]T, 0, len(payloads))
	for _, payload := range payloads {
		var item T
		if err := json.Unmarshal(payload, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Natural identifier accessors shared by the backends.

func PaperID(p types.Paper) string        { return p.PaperID }
func PatentID(p types.Patent) string      { return p.PatentID }
func PostID(p types.SocialPost) string    { return p.PostID }
func ArticleID(a types.NewsArticle) string { return a.ArticleID }

// PriceBarID combines ticker and date; a ticker has one bar per day.
func PriceBarID(b types.PriceBar) string {
	if b.Ticker == "" || b.Date == "" {
		return ""
	}
	return b.Ticker + "|" + b.Date
}

func StockInfoID(s types.StockInfo) string { return s.Ticker }
