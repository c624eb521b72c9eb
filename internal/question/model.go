// Package question provides the fill-in-the-blank question domain model,
// its repository, and the synthesizer that builds questions from captions.
package question

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Placeholder marks the blanked position inside BlankedTokens.
const Placeholder = "()"

// TokenList is an ordered token sequence stored as a JSON text column.
type TokenList []string

// Value implements driver.Valuer.
func (l TokenList) Value() (driver.Value, error) {
	contents, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal > %w", err)
	}
	return string(contents), nil
}

// Scan implements sql.Scanner.
func (l *TokenList) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("unsupported token list type %T", src)
	}
}

// Question is a blanked caption with its answer and classification.
// Rows are unique per (lemma, pos, cefr) and are never mutated.
type Question struct {
	ID               int64     `db:"qid"`
	ImageID          string    `db:"image_id"`
	CaptionID        string    `db:"caption_id"`
	Caption          string    `db:"caption"`
	Lemma            string    `db:"lemma"`
	PartOfSpeech     string    `db:"pos"`
	CEFRLevel        string    `db:"cefr"`
	Answer           string    `db:"answer"`
	BlankedTokens    TokenList `db:"blanked_tokens"`
	LemmatizedTokens TokenList `db:"lemmatized_tokens"`
	CreatedAt        time.Time `db:"created_at"`
}
