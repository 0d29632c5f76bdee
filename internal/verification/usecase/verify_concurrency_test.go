package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goverify/internal/pkg/codegen"
	"github.com/shandysiswandi/goverify/internal/pkg/config"
	"github.com/shandysiswandi/goverify/internal/pkg/hash"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/pkg/validator"
	"github.com/shandysiswandi/goverify/internal/verification/outbound/codestore"
	"github.com/shandysiswandi/goverify/internal/verification/outbound/ratelimit"
)

// Exercises the whole engine against the real Redis-backed store and limiter:
// many goroutines race the same correct code and exactly one may win.
func TestVerifyConcurrentSingleWinner(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	t.Cleanup(func() { cfg.Close() })

	val, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	repoDB := &fakeRepoDB{}
	messaging := &fakeMessaging{}
	dispatcher := newFakeDispatcher()

	uc := New(Dependency{
		Store:   codestore.New(client, instrument.NewNoop()),
		Limiter: ratelimit.New(client, ratelimit.Config{AttemptLimit: 100}, instrument.NewNoop()),
		RepoDB:  repoDB, RepoMessaging: messaging, Dispatcher: dispatcher,
		Validator: val, Config: cfg,
		HMAC:  hash.NewHMACSHA256("test-secret"),
		Codes: codegen.New(),
		UID:   &seqNumberID{}, UUID: &seqStringID{},
		Clock:      &fixedClock{t: time.Now()},
		Instrument: instrument.NewNoop(),
	})

	ctx := context.Background()
	if _, err := uc.Issue(ctx, issueInput()); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	code := dispatcher.orders[0].Code

	const workers = 10
	verified := make([]bool, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := uc.Verify(ctx, VerifyInput{
				Identifier: "+14155551234",
				Purpose:    "registration",
				Code:       code,
			})
			if err != nil {
				t.Errorf("Verify: %v", err)
				return
			}
			verified[i] = out.Verified
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, ok := range verified {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}
	if got := repoDB.successCount(); got != 1 {
		t.Fatalf("successful attempt records = %d, want exactly 1", got)
	}
	if got := len(messaging.verified); got != 1 {
		t.Fatalf("verified events = %d, want exactly 1", got)
	}
}
