package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotEligible, status: http.StatusUnprocessableEntity, publicMsg: "action not allowed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeCheckoutInFlight, status: http.StatusConflict, publicMsg: "checkout already in progress", retryable: true},
		{code: CodeSettlement, status: http.StatusBadGateway, publicMsg: "settlement was not accepted", detailsOK: true},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Error() != "CONFLICT: ctx: boom" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}
}

func TestIsCodeFollowsChain(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeCheckoutInFlight, "busy"))
	if !IsCode(err, CodeCheckoutInFlight) {
		t.Fatal("expected IsCode to find the wrapped code")
	}
	if IsCode(err, CodeValidation) {
		t.Fatal("unexpected code match")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := fmt.Errorf("settle: %w", Wrap(CodeDependency, stdErrors.New("dial tcp"), "host unreachable"))
	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if len(dump.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(dump.Chain), dump.Chain)
	}
}

func TestDumpWalksJoinedErrors(t *testing.T) {
	err := stdErrors.Join(New(CodeSettlement, "rejected"), stdErrors.New("close failed"))
	dump := Dump(err)
	if len(dump.Chain) != 3 {
		t.Fatalf("expected join plus two branches, got %d: %v", len(dump.Chain), dump.Chain)
	}
	if dump.Code != CodeSettlement {
		t.Fatalf("expected settlement code, got %s", dump.Code)
	}
}

func TestDumpFieldsIncludesPostgresDetail(t *testing.T) {
	err := Wrap(CodeConflict, &pgconn.PgError{Code: "23505", ConstraintName: "settlement_receipts_pkey"}, "duplicate receipt")
	fields := Dump(err).Fields()
	if fields["pg_code"] != "23505" {
		t.Fatalf("expected pg_code, got %v", fields["pg_code"])
	}
	if fields["pg_constraint"] != "settlement_receipts_pkey" {
		t.Fatalf("expected constraint, got %v", fields["pg_constraint"])
	}
	if _, ok := fields["pg_table"]; ok {
		t.Fatal("empty postgres values should be omitted")
	}

	plain := Dump(stdErrors.New("boom")).Fields()
	if _, ok := plain["error_code"]; ok {
		t.Fatal("untyped error should not carry error_code")
	}
}
