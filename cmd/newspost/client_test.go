package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"
)

func TestIsConnRefused(t *testing.T) {
	refused := &url.Error{
		Op:  "Get",
		URL: "http://127.0.0.1:3000/health",
		Err: &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
	}
	if !isConnRefused(refused) {
		t.Fatal("expected wrapped ECONNREFUSED to count as refused")
	}

	tests := map[string]error{
		"dns failure":  &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "no such host", Name: "newspost.invalid", IsNotFound: true}},
		"dial timeout": &net.OpError{Op: "dial", Net: "tcp", Err: context.DeadlineExceeded},
		"plain error":  errors.New("boom"),
		"wrapped":      fmt.Errorf("ping: %w", errors.New("unexpected status")),
	}
	for name, err := range tests {
		t.Run(name, func(t *testing.T) {
			if isConnRefused(err) {
				t.Fatalf("expected %v not to count as refused", err)
			}
		})
	}
}
