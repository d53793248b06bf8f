package usecase

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator issues document ids for orders, products and addresses.
type IDGenerator func() string

// NewUUID is the production IDGenerator.
func NewUUID() string { return uuid.NewString() }

func clockOrSystem(c Clock) Clock {
	if c == nil {
		return systemClock{}
	}
	return c
}

func idsOrUUID(g IDGenerator) IDGenerator {
	if g == nil {
		return NewUUID
	}
	return g
}

// 共通ヘルパー: 重複排除 + 空白除去
func dedupStrings(xs []string) []string {
	seen := make(map[string]struct{}, len(xs))
	out := make([]string, 0, len(xs))
	for _, v := range xs {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
