package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/infra/metrics"
	red "whatsapp-commerce-billing/internal/infra/redis"
)

type cartItemRequest struct {
	Type     string `json:"type"`
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
	Duration string `json:"duration,omitempty"`
}

func toCartItems(in []cartItemRequest) []model.CartItem {
	out := make([]model.CartItem, 0, len(in))
	for _, it := range in {
		out = append(out, model.CartItem{
			Type:     model.ItemType(it.Type),
			ItemID:   it.ItemID,
			Quantity: it.Quantity,
			Duration: model.BillingDuration(it.Duration),
		})
	}
	return out
}

type checkoutCreateRequest struct {
	UserID      string            `json:"userId"`
	Currency    string            `json:"currency"`
	VoucherCode string            `json:"voucherCode,omitempty"`
	Items       []cartItemRequest `json:"items"`
}

func (s *Server) handleCheckoutCreate(w http.ResponseWriter, r *http.Request) {
	var req checkoutCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	currency, err := model.ParseCurrency(req.Currency)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	tx, err := s.checkout.Create(r.Context(), req.UserID, toCartItems(req.Items), req.VoucherCode, currency)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	metrics.IncTransactionCreated(string(tx.Type))
	writeData(w, http.StatusCreated, tx)
}

func (s *Server) handleTransactionGet(w http.ResponseWriter, r *http.Request) {
	tx, err := s.checkout.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, tx)
}

type cancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (s *Server) handleTransactionCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := s.checkout.Cancel(r.Context(), chi.URLParam(r, "id"), req.Reason); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "transaction cancelled"})
}

type voucherValidateRequest struct {
	Code     string            `json:"code"`
	UserID   string            `json:"userId,omitempty"`
	Currency string            `json:"currency"`
	Items    []cartItemRequest `json:"items"`
}

type voucherValidateResponse struct {
	Code             string          `json:"code"`
	ApplicableAmount decimal.Decimal `json:"applicableAmount"`
	DiscountAmount   decimal.Decimal `json:"discountAmount"`
}

func (s *Server) handleVoucherValidate(w http.ResponseWriter, r *http.Request) {
	var req voucherValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	// Brute-force guard: keyed per user, falling back to the remote address
	// for anonymous checks.
	if s.limiter != nil {
		key := req.UserID
		if key == "" {
			key = r.RemoteAddr
		}
		ok, err := s.limiter.Allow(r.Context(), red.VoucherCheckKey(key), s.limitCount, s.limitWindow)
		if err != nil {
			s.log.Warn().Err(err).Msg("voucher rate limiter unavailable")
		} else if !ok {
			metrics.IncVoucherCheck("rate_limited")
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many voucher checks")
			return
		}
	}

	currency, err := model.ParseCurrency(req.Currency)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	pricing, err := s.pricing.Quote(r.Context(), toCartItems(req.Items), currency)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	check, err := s.vouchers.Validate(r.Context(), req.Code, pricing, req.UserID)
	if err != nil {
		metrics.IncVoucherCheck("rejected")
		writeDomainError(w, err)
		return
	}
	metrics.IncVoucherCheck("ok")
	writeData(w, http.StatusOK, voucherValidateResponse{
		Code:             check.Voucher.Code,
		ApplicableAmount: check.ApplicableAmount,
		DiscountAmount:   check.DiscountAmount,
	})
}

type voucherRequest struct {
	Code                 string           `json:"code"`
	Name                 string           `json:"name"`
	Description          string           `json:"description,omitempty"`
	DiscountType         string           `json:"discountType"`
	Scope                string           `json:"scope,omitempty"`
	Value                decimal.Decimal  `json:"value"`
	MinAmount            *decimal.Decimal `json:"minAmount,omitempty"`
	MaxDiscount          *decimal.Decimal `json:"maxDiscount,omitempty"`
	MaxUses              *int             `json:"maxUses,omitempty"`
	AllowMultiplePerUser bool             `json:"allowMultiplePerUser"`
	IsActive             bool             `json:"isActive"`
	StartDate            *time.Time       `json:"startDate,omitempty"`
	EndDate              *time.Time       `json:"endDate,omitempty"`
}

func (req *voucherRequest) toModel() *model.Voucher {
	scope := req.Scope
	if scope == "" {
		scope = string(model.ScopeTotal)
	}
	v := &model.Voucher{
		Code:                 req.Code,
		Name:                 req.Name,
		Description:          req.Description,
		Kind:                 scope,
		DiscountType:         req.DiscountType,
		Value:                req.Value,
		MinAmount:            req.MinAmount,
		MaxDiscount:          req.MaxDiscount,
		MaxUses:              req.MaxUses,
		AllowMultiplePerUser: req.AllowMultiplePerUser,
		IsActive:             req.IsActive,
		EndDate:              req.EndDate,
	}
	if req.StartDate != nil {
		v.StartDate = *req.StartDate
	}
	return v
}

func (s *Server) handleVoucherList(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	vouchers, err := s.vouchers.List(r.Context(), activeOnly)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, vouchers)
}

func (s *Server) handleVoucherCreate(w http.ResponseWriter, r *http.Request) {
	var req voucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	created, err := s.vouchers.Create(r.Context(), req.toModel())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (s *Server) handleVoucherUpdate(w http.ResponseWriter, r *http.Request) {
	var req voucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	v := req.toModel()
	v.ID = chi.URLParam(r, "id")
	updated, err := s.vouchers.Update(r.Context(), v)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) handleVoucherDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := s.vouchers.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "voucher deactivated"})
}

type paymentProcessRequest struct {
	TransactionID string          `json:"transactionId"`
	Method        string          `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
}

type paymentItemSummary struct {
	Type     string          `json:"type"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

type paymentProcessResponse struct {
	PaymentID string               `json:"paymentId"`
	Status    string               `json:"status"`
	Total     decimal.Decimal      `json:"total"`
	ExpiresAt time.Time            `json:"expiresAt"`
	Items     []paymentItemSummary `json:"items"`
}

func (s *Server) handlePaymentProcess(w http.ResponseWriter, r *http.Request) {
	var req paymentProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	p, err := s.payments.CreateWithExpiration(r.Context(), req.TransactionID, req.Amount, req.Method)
	if err != nil {
		if errors.Is(err, domain.ErrAmountMismatch) {
			metrics.IncPaymentAmountMismatch()
		}
		writeDomainError(w, err)
		return
	}
	metrics.IncPayment(string(p.Status))

	resp := paymentProcessResponse{
		PaymentID: p.ID,
		Status:    string(p.Status),
		Total:     p.Total(),
		ExpiresAt: p.ExpiresAt,
	}
	if tx, err := s.checkout.Get(r.Context(), p.TransactionID); err == nil {
		resp.Items = itemSummaries(tx)
	}
	writeData(w, http.StatusCreated, resp)
}

func itemSummaries(tx *model.Transaction) []paymentItemSummary {
	var items []paymentItemSummary
	for _, p := range tx.Products {
		items = append(items, paymentItemSummary{
			Type:     string(model.ItemTypeProduct),
			Name:     p.Name,
			Quantity: p.Quantity,
			Amount:   p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity))),
		})
	}
	for _, a := range tx.Addons {
		items = append(items, paymentItemSummary{
			Type:     string(model.ItemTypeAddon),
			Name:     a.Name,
			Quantity: a.Quantity,
			Amount:   a.UnitPrice.Mul(decimal.NewFromInt(int64(a.Quantity))),
		})
	}
	if ws := tx.WhatsappService; ws != nil {
		items = append(items, paymentItemSummary{
			Type:     string(model.ItemTypePackage),
			Name:     string(ws.Duration),
			Quantity: 1,
			Amount:   ws.Amount,
		})
	}
	return items
}

type paymentWebhookRequest struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
	Note      string `json:"note,omitempty"`
}

func (s *Server) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req paymentWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	status := model.PaymentStatus(req.Status)
	switch status {
	case model.PaymentStatusPaid, model.PaymentStatusFailed, model.PaymentStatusCancelled, model.PaymentStatusExpired:
	default:
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "unknown payment status")
		return
	}

	p, err := s.payments.UpdateStatus(r.Context(), req.PaymentID, status, req.Note, "gateway")
	if err != nil {
		if errors.Is(err, domain.ErrActivationFailure) {
			metrics.IncActivation("failure")
		}
		writeDomainError(w, err)
		return
	}
	metrics.IncPayment(string(p.Status))

	if p.Status == model.PaymentStatusPaid {
		metrics.IncActivation("success")
		if tx, err := s.checkout.Get(r.Context(), p.TransactionID); err == nil {
			amount, _ := p.Total().Float64()
			metrics.AddPaymentRevenue(string(tx.Currency), amount)
			if tx.VoucherID != nil {
				metrics.IncVoucherRedemption()
			}
		}
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) handlePaymentGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.payments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) handleJobExpire(w http.ResponseWriter, r *http.Request) {
	n, err := s.checkout.ExpireDue(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if n > 0 {
		metrics.IncTransactionsExpired(n)
	}
	writeData(w, http.StatusOK, map[string]int{"expired": n})
}

func (s *Server) handleJobSweep(w http.ResponseWriter, r *http.Request) {
	summary, err := s.sweep.Run(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	metrics.ObserveSweep(summary.Duration.Seconds(), summary.Activated, summary.Skipped, summary.Errors)
	writeData(w, http.StatusOK, summary)
}
