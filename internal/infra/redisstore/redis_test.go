package redisstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/infra/redisstore"
	"github.com/sleepsheep/sheep/internal/infra/storetest"
)

func newTestStore(t *testing.T) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	st, err := redisstore.Open(context.Background(), redisstore.Config{Addr: mr.Addr(), Prefix: "test"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st, mr
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store {
		st, _ := newTestStore(t)
		return st
	})
}

func TestKeysAreNamespaced(t *testing.T) {
	st, mr := newTestStore(t)
	ctx := context.Background()

	s := domain.NewAccountState("u1")
	if err := st.SaveAccount(ctx, s); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	if !mr.Exists("test:account:u1") {
		t.Errorf("expected key test:account:u1, have %v", mr.Keys())
	}
}

func TestLoadAccount_RejectsUnknownStage(t *testing.T) {
	st, mr := newTestStore(t)
	if err := mr.Set("test:account:u1", `{"user_id":"u1","stage":"golden_ram"}`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := st.LoadAccount(context.Background(), "u1")
	if !errors.Is(err, domain.ErrUnknownStage) {
		t.Errorf("expected ErrUnknownStage, got %v", err)
	}
}

func TestOpen_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := redisstore.Open(context.Background(), redisstore.Config{Addr: addr}); err == nil {
		t.Error("expected error connecting to a closed server")
	}
}

func TestNew_DefaultPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := redisstore.New(client, "")
	t.Cleanup(func() { st.Close() })

	if _, err := st.UnlockAchievement(context.Background(), "u1", domain.AchFirstSleep, time.Date(2025, 7, 1, 22, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("UnlockAchievement: %v", err)
	}
	if !mr.Exists("sheep:achievements:u1") {
		t.Errorf("expected default prefix, have %v", mr.Keys())
	}
}
