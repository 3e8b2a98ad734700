// Package logsetup wires zerolog and go.mau.fi/zeroconfig into a single
// process logger, the way the teacher repo's service binaries do (a
// zeroconfig.Config loaded from YAML, a zerolog.CallerMarshalFunc that
// names the calling function, not just the file/line).
package logsetup

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"go.mau.fi/util/exzerolog"
	"go.mau.fi/zeroconfig"
)

// CallerWithFunctionName is a zerolog.CallerMarshalFunc that includes the
// calling function's name alongside file:line, adapted from the teacher
// repo's util.CallerWithFunctionName.
func CallerWithFunctionName(pc uintptr, file string, line int) string {
	parts := strings.Split(file, "/")
	file = parts[len(parts)-1]
	name := runtime.FuncForPC(pc).Name()
	nameParts := strings.Split(name, ".")
	name = nameParts[len(nameParts)-1]
	return fmt.Sprintf("%s:%d:%s()", file, line, name)
}

// Setup builds the root logger from a zeroconfig config, registering
// CallerWithFunctionName so every "Caller()" log field includes the
// function name, matching the teacher's own logging convention.
func Setup(cfg zeroconfig.Config) (*zerolog.Logger, error) {
	zerolog.CallerMarshalFunc = CallerWithFunctionName
	log, err := (&cfg).Compile()
	if err != nil {
		return nil, fmt.Errorf("logsetup: compile zeroconfig: %w", err)
	}
	exzerolog.SetupDefaults(log)
	return log, nil
}
