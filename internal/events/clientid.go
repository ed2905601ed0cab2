package events

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"reviewpulse/internal/store"
)

const (
	base36       = "0123456789abcdefghijklmnopqrstuvwxyz"
	minClientID  = 12
	randomDigits = 8
)

// NewClientID returns u_<unix ms in base 36>_<8 random>_<8 random>.
func NewClientID(now time.Time) string {
	var b strings.Builder
	b.WriteString("u_")
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	b.WriteByte('_')
	b.WriteString(randomSegment())
	b.WriteByte('_')
	b.WriteString(randomSegment())
	return b.String()
}

func randomSegment() string {
	buf := make([]byte, randomDigits)
	for i := range buf {
		buf[i] = base36[rand.IntN(len(base36))]
	}
	return string(buf)
}

// ClientID returns the persisted client id, creating and storing one when
// none exists or the stored value is too short to be ours.
func ClientID(ctx context.Context, s store.Store, now time.Time) (string, error) {
	uid, err := s.Get(ctx, store.KeyClientID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	if len(uid) >= minClientID {
		return uid, nil
	}

	uid = NewClientID(now)
	if err := s.Set(ctx, store.KeyClientID, uid); err != nil {
		return "", err
	}
	return uid, nil
}
