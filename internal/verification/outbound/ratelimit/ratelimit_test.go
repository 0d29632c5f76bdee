package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client, cfg, instrument.NewNoop()), mr
}

func TestLimiterHitIssue(t *testing.T) {
	lim, _ := newTestLimiter(t, Config{IssueLimit: 5, IssueWindow: time.Hour})
	ctx := context.Background()

	for i := int64(0); i < 5; i++ {
		dec, err := lim.HitIssue(ctx, "+14155551234")
		if err != nil {
			t.Fatalf("HitIssue: %v", err)
		}
		if !dec.Allowed {
			t.Fatalf("issue %d denied, want allowed", i+1)
		}
		if dec.Remaining != 4-i {
			t.Errorf("issue %d remaining = %d, want %d", i+1, dec.Remaining, 4-i)
		}
	}

	dec, err := lim.HitIssue(ctx, "+14155551234")
	if err != nil {
		t.Fatalf("HitIssue over cap: %v", err)
	}
	if dec.Allowed {
		t.Fatal("sixth issue allowed, want denied")
	}
	if dec.RetryAfter <= 0 || dec.RetryAfter > time.Hour {
		t.Errorf("RetryAfter = %v, want within (0, 1h]", dec.RetryAfter)
	}
}

func TestLimiterWindowReset(t *testing.T) {
	lim, mr := newTestLimiter(t, Config{IssueLimit: 1, IssueWindow: time.Hour})
	ctx := context.Background()

	if dec, _ := lim.HitIssue(ctx, "+14155551234"); !dec.Allowed {
		t.Fatal("first issue denied")
	}
	if dec, _ := lim.HitIssue(ctx, "+14155551234"); dec.Allowed {
		t.Fatal("second issue allowed inside window")
	}

	mr.FastForward(time.Hour + time.Second)

	dec, err := lim.HitIssue(ctx, "+14155551234")
	if err != nil {
		t.Fatalf("HitIssue after window: %v", err)
	}
	if !dec.Allowed {
		t.Fatal("issue denied after window elapsed")
	}
}

func TestLimiterIdentifiersIndependent(t *testing.T) {
	lim, _ := newTestLimiter(t, Config{IssueLimit: 1, IssueWindow: time.Hour})
	ctx := context.Background()

	if dec, _ := lim.HitIssue(ctx, "+14155551234"); !dec.Allowed {
		t.Fatal("first identifier denied")
	}
	if dec, _ := lim.HitIssue(ctx, "a@example.com"); !dec.Allowed {
		t.Fatal("unrelated identifier denied")
	}
	if dec, _ := lim.HitIssueUser(ctx, 42); !dec.Allowed {
		t.Fatal("user window denied")
	}
}

func TestLimiterHitIssueConcurrent(t *testing.T) {
	lim, _ := newTestLimiter(t, Config{IssueLimit: 5, IssueWindow: time.Hour})
	ctx := context.Background()

	const workers = 20
	allowed := make([]bool, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dec, err := lim.HitIssue(ctx, "+14155551234")
			if err != nil {
				t.Errorf("HitIssue: %v", err)
				return
			}
			allowed[i] = dec.Allowed
		}(i)
	}
	wg.Wait()

	count := 0
	for _, ok := range allowed {
		if ok {
			count++
		}
	}
	if count != 5 {
		t.Fatalf("allowed = %d, want exactly 5", count)
	}
}

func TestLimiterCooldown(t *testing.T) {
	lim, mr := newTestLimiter(t, Config{Cooldown: time.Minute})
	ctx := context.Background()

	dec, err := lim.CheckCooldown(ctx, "+14155551234", entity.PurposeLogin)
	if err != nil {
		t.Fatalf("CheckCooldown: %v", err)
	}
	if !dec.Allowed {
		t.Fatal("cooldown active before any issuance")
	}

	if err := lim.StampCooldown(ctx, "+14155551234", entity.PurposeLogin); err != nil {
		t.Fatalf("StampCooldown: %v", err)
	}

	dec, err = lim.CheckCooldown(ctx, "+14155551234", entity.PurposeLogin)
	if err != nil {
		t.Fatalf("CheckCooldown: %v", err)
	}
	if dec.Allowed {
		t.Fatal("cooldown not active after stamping")
	}
	if dec.RetryAfter <= 0 || dec.RetryAfter > time.Minute {
		t.Errorf("RetryAfter = %v, want within (0, 60s]", dec.RetryAfter)
	}

	// Other purposes keep their own cooldowns.
	dec, err = lim.CheckCooldown(ctx, "+14155551234", entity.PurposeRegistration)
	if err != nil {
		t.Fatalf("CheckCooldown other purpose: %v", err)
	}
	if !dec.Allowed {
		t.Fatal("cooldown leaked across purposes")
	}

	// 10 seconds in the cooldown still holds; one second past it does not.
	mr.FastForward(10 * time.Second)
	dec, err = lim.CheckCooldown(ctx, "+14155551234", entity.PurposeLogin)
	if err != nil {
		t.Fatalf("CheckCooldown at 10s: %v", err)
	}
	if dec.Allowed {
		t.Fatal("cooldown lifted after only 10s")
	}

	mr.FastForward(51 * time.Second)

	dec, err = lim.CheckCooldown(ctx, "+14155551234", entity.PurposeLogin)
	if err != nil {
		t.Fatalf("CheckCooldown after expiry: %v", err)
	}
	if !dec.Allowed {
		t.Fatal("cooldown still active after expiry")
	}
}

func TestLimiterAttempts(t *testing.T) {
	lim, _ := newTestLimiter(t, Config{AttemptLimit: 3, AttemptWindow: 15 * time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		dec, err := lim.HitAttempt(ctx, "+14155551234", entity.PurposeLogin)
		if err != nil {
			t.Fatalf("HitAttempt: %v", err)
		}
		if !dec.Allowed {
			t.Fatalf("attempt %d denied", i+1)
		}
	}

	dec, err := lim.HitAttempt(ctx, "+14155551234", entity.PurposeLogin)
	if err != nil {
		t.Fatalf("HitAttempt over cap: %v", err)
	}
	if dec.Allowed {
		t.Fatal("fourth attempt allowed, want denied")
	}

	// An exhausted login window does not lock out other purposes.
	dec, err = lim.HitAttempt(ctx, "+14155551234", entity.PurposePasswordReset)
	if err != nil {
		t.Fatalf("HitAttempt other purpose: %v", err)
	}
	if !dec.Allowed {
		t.Fatal("attempt window leaked across purposes")
	}

	if err := lim.ResetAttempts(ctx, "+14155551234", entity.PurposeLogin); err != nil {
		t.Fatalf("ResetAttempts: %v", err)
	}

	dec, err = lim.HitAttempt(ctx, "+14155551234", entity.PurposeLogin)
	if err != nil {
		t.Fatalf("HitAttempt after reset: %v", err)
	}
	if !dec.Allowed {
		t.Fatal("attempt denied after reset")
	}
}
