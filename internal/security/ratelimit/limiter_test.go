package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterAllowsUpToMax(t *testing.T) {
	limiter := NewLimiter(3, time.Minute)
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		if !limiter.Allow("client-a") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow("client-a") {
		t.Error("request over the limit should be denied")
	}
}

func TestLimiterIsolatesIdentities(t *testing.T) {
	limiter := NewLimiter(1, time.Minute)
	defer limiter.Stop()

	if !limiter.Allow("client-a") {
		t.Fatal("first request for client-a should be allowed")
	}
	if !limiter.Allow("client-b") {
		t.Error("client-b has its own bucket")
	}
	if limiter.Allow("client-a") {
		t.Error("client-a is over its limit")
	}
}

func TestLimiterWindowSlides(t *testing.T) {
	limiter := NewLimiter(1, 20*time.Millisecond)
	defer limiter.Stop()

	if !limiter.Allow("client-a") {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow("client-a") {
		t.Fatal("second request inside the window should be denied")
	}

	time.Sleep(25 * time.Millisecond)
	if !limiter.Allow("client-a") {
		t.Error("request after the window passed should be allowed")
	}
}

func TestLimiterEmptyIdentityNeverLimited(t *testing.T) {
	limiter := NewLimiter(1, time.Minute)
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if !limiter.Allow("") {
			t.Fatal("empty identity must never be limited")
		}
	}
}
