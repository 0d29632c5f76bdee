package inbound

import (
	"github.com/shandysiswandi/goverify/internal/pkg/router"
	"github.com/shandysiswandi/goverify/internal/verification/usecase"
)

// HTTPEndpoint exposes HTTP handlers for the verification code workflows.
type HTTPEndpoint struct {
	uc uc
}

// Issue generates and delivers a verification code.
// @Summary Issue verification code
// @Description Generates a one-time code for the identifier and delivers it over the requested channel. An active code for the same identifier and purpose is superseded.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body IssueRequest true "Issue payload"
// @Success 200 {object} router.successResponse{data=IssueResponse} "Code issued"
// @Failure 400 {object} router.errorResponse "Invalid request body or unknown purpose/channel"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Issue limit reached"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/verification/issue [post]
func (h *HTTPEndpoint) Issue(r *router.Request) (any, error) {
	var req IssueRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Issue(r.Context(), usecase.IssueInput{
		Identifier: req.Identifier,
		Purpose:    req.Purpose,
		Channel:    req.Channel,
		Locale:     req.Locale,
	})
	if err != nil {
		return nil, err
	}

	return IssueResponse{
		RequestID:  resp.RequestID,
		ExpiresAt:  resp.ExpiresAt,
		RetryAfter: int64(resp.Cooldown.Seconds()),
	}, nil
}

// Verify checks a submitted code against the active one.
// @Summary Verify code
// @Description Compares the submitted code with the active one for the identifier and purpose. A correct code can win at most once.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyResponse} "Verification result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 410 {object} router.errorResponse "No active code for this identifier and purpose"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Attempt limit reached"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/verification/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Identifier: req.Identifier,
		Purpose:    req.Purpose,
		Code:       req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{
		Verified:          resp.Verified,
		RequestID:         resp.RequestID,
		AttemptsRemaining: resp.AttemptsRemaining,
	}, nil
}

// Resend delivers a fresh code once the cooldown has elapsed.
// @Summary Resend verification code
// @Description Issues and delivers a fresh code for the identifier and purpose, superseding the previous one. Rejected while the resend cooldown is active.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body ResendRequest true "Resend payload"
// @Success 200 {object} router.successResponse{data=IssueResponse} "Code reissued"
// @Failure 400 {object} router.errorResponse "Invalid request body or unknown purpose/channel"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Cooldown active or issue limit reached"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/verification/resend [post]
func (h *HTTPEndpoint) Resend(r *router.Request) (any, error) {
	var req ResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Resend(r.Context(), usecase.ResendInput{
		Identifier: req.Identifier,
		Purpose:    req.Purpose,
		Channel:    req.Channel,
		Locale:     req.Locale,
	})
	if err != nil {
		return nil, err
	}

	return IssueResponse{
		RequestID:  resp.RequestID,
		ExpiresAt:  resp.ExpiresAt,
		RetryAfter: int64(resp.Cooldown.Seconds()),
	}, nil
}
