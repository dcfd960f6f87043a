// Package testing flips the console into test mode when imported by tests.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

// testEnv holds the required settings plus the test mode switch.
var testEnv = [][2]string{
	{"CONSOLE_TEST_MODE", "1"},
	{"SESSION_SECRET", "test-session-secret"},
	{"CSRF_SECRET", "test-csrf-secret"},
}

var prepare = sync.OnceFunc(func() {
	for _, kv := range testEnv {
		if _, ok := os.LookupEnv(kv[0]); !ok {
			_ = os.Setenv(kv[0], kv[1])
		}
	}
})

func init() {
	prepare()
}

// TestMain lets packages delegate their own TestMain here.
func TestMain(m *stdtesting.M) {
	prepare()
	os.Exit(m.Run())
}
