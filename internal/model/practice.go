package model

import (
	"encoding/json"
	"time"
)

// AnalyzeRequest is the body sent to the scoring endpoint.
type AnalyzeRequest struct {
	RecognizedText string `json:"recognizedText"`
	MaterialID     string `json:"materialId"`
}

// PracticeResult is the server-computed score for one attempt.
type PracticeResult struct {
	Score         int      `json:"score"`
	Accuracy      float64  `json:"accuracy"`
	Transcription string   `json:"transcription"`
	CorrectWords  int      `json:"correctWords"`
	TotalWords    int      `json:"totalWords"`
	MistakeWords  []string `json:"mistakeWords"`
	Feedback      string   `json:"feedback"`
}

// HistoryRecord is a past practice attempt stored by the server.
type HistoryRecord struct {
	ID            string    `json:"_id"`
	MaterialID    string    `json:"-"`
	MaterialTitle string    `json:"-"`
	ItemText      string    `json:"itemText,omitempty"`
	Transcript    string    `json:"recognizedText,omitempty"`
	Score         int       `json:"score"`
	CreatedAt     time.Time `json:"createdAt"`
}

type materialRef struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

type historyRecordWire struct {
	ID             string          `json:"_id"`
	MaterialID     json.RawMessage `json:"materialId"`
	ItemText       string          `json:"itemText"`
	RecognizedText string          `json:"recognizedText"`
	Transcription  string          `json:"transcription"`
	Score          int             `json:"score"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// UnmarshalJSON accepts materialId either as a plain ID string or as the
// populated material object the history endpoints return.
func (r *HistoryRecord) UnmarshalJSON(data []byte) error {
	var w historyRecordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*r = HistoryRecord{
		ID:         w.ID,
		ItemText:   w.ItemText,
		Transcript: w.RecognizedText,
		Score:      w.Score,
		CreatedAt:  w.CreatedAt,
	}
	if r.Transcript == "" {
		r.Transcript = w.Transcription
	}

	if len(w.MaterialID) == 0 || string(w.MaterialID) == "null" {
		return nil
	}
	var id string
	if err := json.Unmarshal(w.MaterialID, &id); err == nil {
		r.MaterialID = id
		return nil
	}
	var ref materialRef
	if err := json.Unmarshal(w.MaterialID, &ref); err != nil {
		return err
	}
	r.MaterialID = ref.ID
	r.MaterialTitle = ref.Title
	if r.ItemText == "" {
		r.ItemText = ref.Text
	}
	return nil
}

// RecentActivity is a compact history entry for the progress screen.
type RecentActivity struct {
	LessonName  string    `json:"lessonName"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}
