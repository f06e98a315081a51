package comments

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a failure at the point where it is raised so callers never
// have to inspect message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindEditorMissing
	KindInvalid
	KindEmptyContent
	KindNoChannel
	KindInvalidMetadata
	KindNoWallet
	KindWrongChain
	KindNetwork
	KindSigner
	KindUpload
	KindUserRejected
	KindInsufficientFunds
	KindRPC
	KindWriteFailed
	KindConfirmation
	KindIDUnresolved
	KindUnsupportedAsset
	KindDevMode
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindConfig:            "config",
	KindEditorMissing:     "editor_missing",
	KindInvalid:           "invalid",
	KindEmptyContent:      "empty_content",
	KindNoChannel:         "no_channel",
	KindInvalidMetadata:   "invalid_metadata",
	KindNoWallet:          "no_wallet",
	KindWrongChain:        "wrong_chain",
	KindNetwork:           "network",
	KindSigner:            "signer",
	KindUpload:            "upload",
	KindUserRejected:      "user_rejected",
	KindInsufficientFunds: "insufficient_funds",
	KindRPC:               "rpc",
	KindWriteFailed:       "write_failed",
	KindConfirmation:      "confirmation",
	KindIDUnresolved:      "id_unresolved",
	KindUnsupportedAsset:  "unsupported_asset",
	KindDevMode:           "dev_mode",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the tagged error produced by every step of a submission.
type Error struct {
	Kind Kind
	Msg  string

	// Fields holds per-field messages for KindInvalid.
	Fields map[string][]string
	// Status and Body carry the remote response for KindSigner.
	Status int
	Body   string
	// TxHash is set when the failure happened after the transaction was sent.
	TxHash string

	Err error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if len(e.Fields) > 0 {
		msg = msg + ": " + formatFields(e.Fields)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a tagged error.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags err with kind. A nil err yields nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Invalid builds a per-field validation error.
func Invalid(fields map[string][]string) *Error {
	return &Error{Kind: KindInvalid, Msg: "invalid comment", Fields: fields}
}

// KindOf returns the kind of the outermost tagged error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsValidation reports whether err is something the author can fix in the
// form itself.
func IsValidation(err error) bool {
	switch KindOf(err) {
	case KindInvalid, KindEmptyContent, KindNoChannel, KindInvalidMetadata:
		return true
	}
	return false
}

// UserMessage picks the text shown to the author for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case KindSigner:
		return "Failed to sign comment. Please try again."
	case KindInsufficientFunds:
		return "Insufficient funds for transaction"
	case KindUserRejected:
		return "Transaction was rejected by user"
	case KindNetwork:
		return "Network error. Please check your connection"
	case KindWrongChain:
		return "Please switch to the required network"
	case KindEmptyContent:
		return "Comment cannot be empty"
	case KindNoChannel:
		return "Please select a channel"
	case KindNoWallet:
		return "Please connect your wallet"
	case KindRPC:
		return "The network rejected the transaction. Please try again later"
	case KindIDUnresolved:
		return "Comment was submitted but its identifier could not be recovered"
	case KindDevMode:
		return "Development mode: copy the share URL instead of posting"
	case KindUnsupportedAsset:
		return "This channel requires a token type that is not supported"
	}
	return err.Error()
}

func formatFields(fields map[string][]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(fields[name], ", "))
	}
	return strings.Join(parts, "; ")
}
