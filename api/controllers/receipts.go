package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/shopoverlay/api/responses"
	"github.com/angelmondragon/shopoverlay/api/validators"
	"github.com/angelmondragon/shopoverlay/internal/receipts"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
	"github.com/angelmondragon/shopoverlay/pkg/logger"
	"github.com/angelmondragon/shopoverlay/pkg/pagination"
)

// ReceiptsList pages through settlement receipts newest first, optionally
// for one shop.
func ReceiptsList(svc receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "receipts are disabled"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shopID := validators.SanitizeString(r.URL.Query().Get("shop"), 64)

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		list, err := svc.ListRecent(r.Context(), shopID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := receiptListResponse{
			Items:      make([]receiptResponse, 0, len(list.Items)),
			NextCursor: list.Cursor,
		}
		for _, rec := range list.Items {
			out.Items = append(out.Items, newReceiptResponse(rec))
		}
		responses.WriteSuccess(w, out)
	}
}
