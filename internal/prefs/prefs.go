// Package prefs stores user preferences in the local key/value store.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/linguaku/linguaku/internal/store"
)

// DefaultDailyGoal is used until the user picks a goal.
const DefaultDailyGoal = 5

// GoalOptions are the daily goals the user can choose from.
var GoalOptions = []int{1, 3, 5, 10, 15, 20}

// ErrInvalidGoal is returned for a goal outside GoalOptions.
var ErrInvalidGoal = errors.New("daily goal must be one of 1, 3, 5, 10, 15, 20")

// Prefs reads and writes preferences.
type Prefs struct {
	kv store.KVRepo
}

// New creates Prefs over kv.
func New(kv store.KVRepo) *Prefs {
	return &Prefs{kv: kv}
}

// DailyGoal returns the stored goal, or DefaultDailyGoal when none is set
// or the stored value is unusable.
func (p *Prefs) DailyGoal(ctx context.Context) (int, error) {
	v, err := p.kv.Get(ctx, store.KeyDailyGoal)
	if errors.Is(err, store.ErrNotFound) {
		return DefaultDailyGoal, nil
	}
	if err != nil {
		return DefaultDailyGoal, err
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return DefaultDailyGoal, nil
	}
	return n, nil
}

// SetDailyGoal stores n.
func (p *Prefs) SetDailyGoal(ctx context.Context, n int) error {
	if !slices.Contains(GoalOptions, n) {
		return fmt.Errorf("%w (got %d)", ErrInvalidGoal, n)
	}
	return p.kv.Put(ctx, store.KeyDailyGoal, strconv.Itoa(n))
}
