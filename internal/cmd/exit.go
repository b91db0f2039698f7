package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	apperrors "github.com/vidlinks/vidlinks/internal/errors"
)

// exitProcess is replaced in tests.
var exitProcess = os.Exit

// ExitCodeFor picks the foundry exit code for a command failure. Upstream
// outcomes that may clear on their own map to service-unavailable so
// scripts can retry them.
func ExitCodeFor(err error) foundry.ExitCode {
	var outcome *apperrors.Outcome
	if stderrors.As(err, &outcome) {
		if outcome.Retryable() || outcome.Kind == apperrors.KindUnknown {
			return foundry.ExitExternalServiceUnavailable
		}
		return foundry.ExitFailure
	}

	var envelope *errors.ErrorEnvelope
	if stderrors.As(err, &envelope) {
		switch envelope.Code {
		case apperrors.CodeConfigInvalid:
			return foundry.ExitConfigInvalid
		case apperrors.CodeExternalService:
			return foundry.ExitExternalServiceUnavailable
		}
	}
	return foundry.ExitFailure
}

// describeFailure renders err for stderr. Classified outcomes show their
// code and the first suggestion.
func describeFailure(err error) string {
	var outcome *apperrors.Outcome
	if !stderrors.As(err, &outcome) {
		return err.Error()
	}
	msg := fmt.Sprintf("[%s] %s", outcome.Kind, outcome.Message)
	if suggestions := apperrors.Suggestions(outcome.Kind); len(suggestions) > 0 {
		msg += " (" + suggestions[0] + ")"
	}
	return msg
}

// Fail exits with the code ExitCodeFor chooses.
func Fail(err error) {
	ExitWithCodeStderr(ExitCodeFor(err), "Command failed", stderrors.New(describeFailure(err)))
}

// ExitWithCode logs msg and err with the exit code's catalog metadata, then
// exits. A nil logger falls back to stderr.
func ExitWithCode(logger *logging.Logger, code foundry.ExitCode, msg string, err error) {
	if logger == nil {
		ExitWithCodeStderr(code, msg, err)
		return
	}
	info, ok := foundry.GetExitCodeInfo(code)
	if !ok {
		ExitWithCodeStderr(code, msg, err)
		return
	}

	fields := []zap.Field{
		zap.Int("exit_code", info.Code),
		zap.String("exit_name", info.Name),
		zap.String("exit_category", info.Category),
	}
	fields = append(fields, envelopeFields(err)...)
	logger.Error(msg, fields...)
	exitProcess(info.Code)
}

// ExitWithCodeStderr is ExitWithCode for failures before the CLI logger
// exists.
func ExitWithCodeStderr(code foundry.ExitCode, msg string, err error) {
	exitProcess(writeFailure(os.Stderr, code, msg, err))
}

// writeFailure prints the fatal banner and returns the numeric exit code.
func writeFailure(w io.Writer, code foundry.ExitCode, msg string, err error) int {
	switch envelope, isEnvelope := err.(*errors.ErrorEnvelope); {
	case err == nil:
		fmt.Fprintf(w, "FATAL: %s\n", msg)
	case isEnvelope:
		fmt.Fprintf(w, "FATAL: %s [%s]: %s\n", msg, envelope.Code, envelope.Message)
		if cause := underlying(envelope); cause != nil {
			fmt.Fprintf(w, "Cause: %v\n", cause)
		}
	default:
		fmt.Fprintf(w, "FATAL: %s: %v\n", msg, err)
	}

	info, ok := foundry.GetExitCodeInfo(code)
	if !ok {
		fmt.Fprintf(w, "Exit Code: %d\n", code)
		return int(code)
	}
	fmt.Fprintf(w, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
	return info.Code
}

func envelopeFields(err error) []zap.Field {
	envelope, ok := err.(*errors.ErrorEnvelope)
	if !ok {
		return []zap.Field{zap.Error(err)}
	}
	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
		zap.String("error_message", envelope.Message),
	}
	if envelope.CorrelationID != "" {
		fields = append(fields, zap.String("correlation_id", envelope.CorrelationID))
	}
	if envelope.Context != nil {
		fields = append(fields, zap.Any("error_context", envelope.Context))
	}
	if cause := underlying(envelope); cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	return fields
}

// underlying returns the error an envelope wraps, from Original or the
// wrapped_error context entry.
func underlying(envelope *errors.ErrorEnvelope) error {
	if envelope == nil {
		return nil
	}
	if cause, ok := envelope.Original.(error); ok {
		return cause
	}
	if msg, ok := envelope.Context["wrapped_error"].(string); ok && msg != "" {
		return stderrors.New(msg)
	}
	return nil
}
