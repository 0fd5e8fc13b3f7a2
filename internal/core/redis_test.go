// AngelaMos | 2026
// redis_test.go

package core

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AcolyteGlobal/SimProj-BE/internal/config"
)

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), config.RedisConfig{URL: "http://localhost:6379"})
	if err == nil || !strings.Contains(err.Error(), "parse redis url") {
		t.Fatalf("NewRedis() error = %v, want parse error", err)
	}
}

func TestNewRedisPingTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	// accept and never answer
	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})

	cfg := config.RedisConfig{
		URL:         "redis://" + ln.Addr().String() + "/0",
		PoolSize:    1,
		DialTimeout: 200 * time.Millisecond,
		PingTimeout: 150 * time.Millisecond,
	}

	start := time.Now()
	_, err = NewRedis(context.Background(), cfg)
	if err == nil {
		t.Fatal("NewRedis() should fail against a silent server")
	}
	if !strings.Contains(err.Error(), "connect redis") {
		t.Errorf("error = %v, want connect redis prefix", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("NewRedis() took %v, ping timeout not honored", elapsed)
	}
}

func TestRedisPingUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	r, err := NewRedis(context.Background(), config.RedisConfig{
		URL:         "redis://" + addr,
		PingTimeout: 100 * time.Millisecond,
	})
	if err == nil {
		_ = r.Close()
		t.Fatal("NewRedis() should fail when nothing is listening")
	}
}
