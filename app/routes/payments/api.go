package payments

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"institute-admin/app/cache"
	"institute-admin/app/database"
	"institute-admin/app/invalidation"
	"institute-admin/app/models"
	"institute-admin/app/payments"
	"institute-admin/app/services"
)

var validate = validator.New()

// Handlers carries the collaborators the payment staging endpoints need.
type Handlers struct {
	DB       *sql.DB
	Sessions *payments.SessionRegistry
	Balances *services.BalanceService
	Resolver *invalidation.Resolver
	Store    *cache.Store
	Rules    models.ValidationRules
}

// StartSessionRequest opens a staging session for one student.
type StartSessionRequest struct {
	AdmissionNo string `json:"admission_no" validate:"required"`
	Context     string `json:"context" validate:"required,oneof=school college"`
}

// ItemRequest is one staged payment line as sent by the client.
type ItemRequest struct {
	Purpose           string          `json:"purpose" validate:"required,oneof=book_fee tuition_fee transport_fee other"`
	TermNumber        *int            `json:"term_number,omitempty"`
	PaymentMonth      *string         `json:"payment_month,omitempty"`
	CustomPurposeName string          `json:"custom_purpose_name,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentMethod     string          `json:"payment_method" validate:"required,oneof=cash mobile_money bank_transfer cheque"`
}

func (r *ItemRequest) toItem(id string) models.PaymentItem {
	return models.PaymentItem{
		ID:                id,
		Purpose:           models.PaymentPurpose(r.Purpose),
		TermNumber:        r.TermNumber,
		PaymentMonth:      r.PaymentMonth,
		CustomPurposeName: r.CustomPurposeName,
		Amount:            r.Amount,
		PaymentMethod:     models.PaymentMethod(r.PaymentMethod),
	}
}

// StartSessionAPI opens a staging session. The balance snapshot is fetched
// here, exactly once for the life of the session.
func (h *Handlers) StartSessionAPI(c *fiber.Ctx) error {
	var req StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	instCtx := models.InstitutionContext(req.Context)

	studentID, err := h.Balances.ResolveStudent(req.AdmissionNo, instCtx)
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "Student not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to look up student")
	}

	balances, err := h.Balances.GetBalances(req.AdmissionNo, instCtx)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch fee balances")
	}

	service := services.NewDBPaymentService(h.DB, instCtx)
	sess := h.Sessions.Start(instCtx, studentID, req.AdmissionNo, balances, h.Rules, service)

	// Reporting success to the operator never waits for dependent region
	// refreshes; stale views may be visible for a moment.
	sess.Coordinator.OnSuccess(func(ev payments.CompletionEvent) {
		go h.refreshRegions(ev)
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    h.sessionView(sess),
	})
}

// GetSessionAPI returns the staged list, derived total, live validation
// result, and coordinator state.
func (h *Handlers) GetSessionAPI(c *fiber.Ctx) error {
	sess, ok := h.Sessions.Get(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Staging session not found")
	}
	sess.Touch()

	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.sessionView(sess),
	})
}

// CancelSessionAPI abandons a session; the staged list is discarded with no
// side effects.
func (h *Handlers) CancelSessionAPI(c *fiber.Ctx) error {
	if !h.Sessions.Cancel(c.Params("id")) {
		return fiber.NewError(fiber.StatusNotFound, "Staging session not found")
	}
	return c.JSON(fiber.Map{"success": true})
}

// AddItemAPI appends a line to the staged list. No business validation runs
// here; the list may hold invalid states while the operator is composing.
func (h *Handlers) AddItemAPI(c *fiber.Ctx) error {
	sess, ok := h.Sessions.Get(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Staging session not found")
	}
	sess.Touch()

	var req ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	item := sess.Builder.AddItem(req.toItem(""))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"item":       item,
			"total":      sess.Builder.Total(),
			"validation": sess.Validate(),
		},
	})
}

// UpdateItemAPI replaces the staged line with a matching id.
func (h *Handlers) UpdateItemAPI(c *fiber.Ctx) error {
	sess, ok := h.Sessions.Get(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Staging session not found")
	}
	sess.Touch()

	var req ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := sess.Builder.UpdateItem(req.toItem(c.Params("itemId"))); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Staged payment item not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total":      sess.Builder.Total(),
			"validation": sess.Validate(),
		},
	})
}

// RemoveItemAPI un-stages a line, subject to the removal-ordering invariant.
func (h *Handlers) RemoveItemAPI(c *fiber.Ctx) error {
	sess, ok := h.Sessions.Get(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Staging session not found")
	}
	sess.Touch()

	err := sess.Builder.RemoveItem(c.Params("itemId"))
	var seqErr *payments.SequenceViolationError
	switch {
	case errors.As(err, &seqErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   seqErr.Error(),
		})
	case errors.Is(err, payments.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Staged payment item not found")
	case err != nil:
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to remove item")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total":      sess.Builder.Total(),
			"validation": sess.Validate(),
		},
	})
}

// SubmitAPI validates and submits the staged batch. A submission already in
// flight is rejected outright; validation failures return the message list
// for inline display; service failures keep the staged list intact for retry.
func (h *Handlers) SubmitAPI(c *fiber.Ctx) error {
	sess, ok := h.Sessions.Get(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Staging session not found")
	}
	sess.Touch()

	type SubmitRequest struct {
		Remarks string `json:"remarks,omitempty"`
	}
	var req SubmitRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	event, err := sess.Coordinator.Submit(c.UserContext(), sess.Data(req.Remarks))
	if err != nil {
		var valErr *payments.ValidationError
		var sysErr *payments.SystemError
		switch {
		case errors.Is(err, payments.ErrBusy):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		case errors.As(err, &valErr):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"success": false,
				"errors":  valErr.Messages,
			})
		case errors.As(err, &sysErr):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"success": false,
				"error":   sysErr.Error(),
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Submission failed")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    event,
	})
}

// GetPaymentAPI returns a recorded payment by its receipt reference.
func (h *Handlers) GetPaymentAPI(c *fiber.Ctx) error {
	payment, err := database.GetPaymentByReference(h.DB, c.Params("reference"))
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "Payment not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch payment")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payment,
	})
}

// GetStudentPaymentsAPI lists recorded payments for one admission number.
func (h *Handlers) GetStudentPaymentsAPI(c *fiber.Ctx) error {
	admissionNo := c.Query("admission_no")
	instCtx := models.InstitutionContext(c.Query("context", string(models.SchoolContext)))
	if admissionNo == "" {
		return fiber.NewError(fiber.StatusBadRequest, "admission_no is required")
	}

	history, err := database.GetStudentPayments(h.DB, admissionNo, instCtx)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch payments")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    history,
	})
}

// refreshRegions resolves the regions derived from the recorded payment and
// refreshes them. Runs detached from the submit request.
func (h *Handlers) refreshRegions(ev payments.CompletionEvent) {
	keys := h.Resolver.Resolve(ev.Context, invalidation.EntityPayment, invalidation.OpCreate, ev.StudentID)
	for _, key := range keys {
		h.Store.Invalidate(key)
	}
	for _, key := range keys {
		if err := h.Store.Refetch(context.Background(), key); err != nil {
			log.Printf("Region %s left stale after payment %s: %v", key, ev.Reference, err)
		}
	}
}

func (h *Handlers) sessionView(sess *payments.Session) fiber.Map {
	return fiber.Map{
		"session_id":   sess.ID,
		"context":      sess.Context,
		"student_id":   sess.StudentID,
		"admission_no": sess.AdmissionNo,
		"state":        sess.Coordinator.State(),
		"items":        sess.Builder.Items(),
		"total":        sess.Builder.Total(),
		"validation":   sess.Validate(),
		"balances":     sess.Balances,
	}
}
