package inbound

import (
	"context"

	"github.com/shandysiswandi/goverify/internal/pkg/router"
	"github.com/shandysiswandi/goverify/internal/verification/usecase"
)

type uc interface {
	Issue(ctx context.Context, in usecase.IssueInput) (*usecase.IssueOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	Resend(ctx context.Context, in usecase.ResendInput) (*usecase.IssueOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Verification codes
	r.POST("/api/v1/verification/issue", end.Issue)
	r.POST("/api/v1/verification/verify", end.Verify)
	r.POST("/api/v1/verification/resend", end.Resend)
}
