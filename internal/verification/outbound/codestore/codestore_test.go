package codestore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client, instrument.NewNoop()), mr
}

func sampleRequest(id string, now time.Time) entity.VerificationRequest {
	return entity.VerificationRequest{
		ID:         id,
		Identifier: "+14155551234",
		Purpose:    entity.PurposeRegistration,
		Channel:    entity.ChannelSMS,
		CodeHash:   "68656c6c6f",
		CreatedAt:  now,
		ExpiresAt:  now.Add(10 * time.Minute),
	}
}

func TestStorePutGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.Put(ctx, sampleRequest("req-1", now), 10*time.Minute); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, err := store.Get(ctx, "+14155551234", entity.PurposeRegistration)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.ID != "req-1" {
		t.Errorf("ID = %q, want req-1", got.ID)
	}
	if got.CodeHash != "68656c6c6f" {
		t.Errorf("CodeHash = %q", got.CodeHash)
	}
	if got.Channel != entity.ChannelSMS {
		t.Errorf("Channel = %v, want sms", got.Channel)
	}
	if got.UsedAt != nil {
		t.Errorf("UsedAt = %v, want nil", got.UsedAt)
	}
	if !got.Active(now) {
		t.Error("fresh request should be active")
	}
}

func TestStoreGetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "+14155551234", entity.PurposeLogin)
	if !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
}

func TestStorePutSupersedes(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.Put(ctx, sampleRequest("req-1", now), 10*time.Minute); err != nil {
		t.Fatalf("first Put: %v", err)
	}

	second := sampleRequest("req-2", now.Add(time.Second))
	second.CodeHash = "6f74686572"
	if err := store.Put(ctx, second, 10*time.Minute); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, err := store.Get(ctx, "+14155551234", entity.PurposeRegistration)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "req-2" {
		t.Errorf("ID = %q, want req-2 (old request must be superseded)", got.ID)
	}
	if got.CodeHash != "6f74686572" {
		t.Errorf("CodeHash = %q, want the superseding hash", got.CodeHash)
	}

	// The superseded request can no longer be consumed.
	res, err := store.MarkUsed(ctx, "+14155551234", entity.PurposeRegistration, "req-1", now)
	if err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}
	if res != entity.ConsumeGone {
		t.Errorf("MarkUsed(req-1) = %v, want ConsumeGone", res)
	}
}

func TestStorePurposesAreIndependent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	reg := sampleRequest("req-reg", now)
	login := sampleRequest("req-login", now)
	login.Purpose = entity.PurposeLogin

	if err := store.Put(ctx, reg, 10*time.Minute); err != nil {
		t.Fatalf("Put registration: %v", err)
	}
	if err := store.Put(ctx, login, 10*time.Minute); err != nil {
		t.Fatalf("Put login: %v", err)
	}

	got, err := store.Get(ctx, "+14155551234", entity.PurposeRegistration)
	if err != nil {
		t.Fatalf("Get registration: %v", err)
	}
	if got.ID != "req-reg" {
		t.Errorf("registration ID = %q, want req-reg", got.ID)
	}
}

func TestStoreMarkUsedOnce(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.Put(ctx, sampleRequest("req-1", now), 10*time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}

	res, err := store.MarkUsed(ctx, "+14155551234", entity.PurposeRegistration, "req-1", now)
	if err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}
	if res != entity.ConsumeWon {
		t.Fatalf("first MarkUsed = %v, want ConsumeWon", res)
	}

	res, err = store.MarkUsed(ctx, "+14155551234", entity.PurposeRegistration, "req-1", now)
	if err != nil {
		t.Fatalf("second MarkUsed: %v", err)
	}
	if res != entity.ConsumeAlreadyUsed {
		t.Fatalf("second MarkUsed = %v, want ConsumeAlreadyUsed", res)
	}

	got, err := store.Get(ctx, "+14155551234", entity.PurposeRegistration)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UsedAt == nil {
		t.Fatal("UsedAt not recorded")
	}
	if got.Active(now) {
		t.Error("used request must not be active")
	}
}

func TestStoreMarkUsedConcurrent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.Put(ctx, sampleRequest("req-1", now), 10*time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}

	const workers = 10
	results := make([]entity.ConsumeResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := store.MarkUsed(ctx, "+14155551234", entity.PurposeRegistration, "req-1", now)
			if err != nil {
				t.Errorf("MarkUsed: %v", err)
				return
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, res := range results {
		if res == entity.ConsumeWon {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
}

func TestStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.Put(ctx, sampleRequest("req-1", now), time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "+14155551234", entity.PurposeRegistration)
	if !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("Get after expiry = %v, want ErrNotFound", err)
	}
}

func TestStoreIncrementAttempts(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.Put(ctx, sampleRequest("req-1", now), 10*time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.IncrementAttempts(ctx, "+14155551234", entity.PurposeRegistration); err != nil {
			t.Fatalf("IncrementAttempts: %v", err)
		}
	}

	got, err := store.Get(ctx, "+14155551234", entity.PurposeRegistration)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", got.Attempts)
	}
}
