package cache

import (
	"encoding/json"
	"time"

	"github.com/ppiankov/regmap/internal/model"
)

// Judgments memoizes remote coverage judgments by provider, model and prompt
type Judgments struct {
	store Cache
	ttl   time.Duration
}

// NewJudgments wraps store. A nil store disables memoization.
func NewJudgments(store Cache, ttl time.Duration) *Judgments {
	return &Judgments{store: store, ttl: ttl}
}

// JudgmentKey identifies one remote evaluation
func JudgmentKey(provider, modelName, prompt string) string {
	return Key("judgment", provider, modelName, prompt)
}

// Get returns a cached judgment
func (j *Judgments) Get(key string) (model.Judgment, bool) {
	if j == nil || j.store == nil {
		return model.Judgment{}, false
	}

	data, ok := j.store.Get(key)
	if !ok {
		return model.Judgment{}, false
	}

	var judgment model.Judgment
	if err := json.Unmarshal(data, &judgment); err != nil {
		_ = j.store.Delete(key)
		return model.Judgment{}, false
	}
	return judgment, true
}

// Put stores a judgment. Storage errors are returned but callers may ignore them.
func (j *Judgments) Put(key string, judgment model.Judgment) error {
	if j == nil || j.store == nil {
		return nil
	}

	data, err := json.Marshal(judgment)
	if err != nil {
		return err
	}
	return j.store.Set(key, data, j.ttl)
}
