package app

import (
	"os"
	"strconv"
	"sync"
)

// TestModeEnv is set by the testing package; binaries started under it exit
// before touching Redis, Postgres or the network.
const TestModeEnv = "CONSOLE_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	on, _ := strconv.ParseBool(os.Getenv(TestModeEnv))
	return on
})

// InTestMode reports whether the process runs under tests.
func InTestMode() bool {
	return testMode()
}
