package http_test

import (
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/SAGARSINGH-1/HostelCMS/internal/api/http"
	"github.com/SAGARSINGH-1/HostelCMS/internal/auth"
	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
	"github.com/SAGARSINGH-1/HostelCMS/internal/observability"
)

type stubDirectory struct {
	identities map[string]domain.Identity
}

func (s *stubDirectory) ResolveByHandle(context.Context, string) (*domain.Identity, error) {
	return nil, errors.New("not implemented")
}

func (s *stubDirectory) ResolveManyByHandles(context.Context, []string) (map[string]domain.Identity, error) {
	return nil, errors.New("not implemented")
}

func (s *stubDirectory) ResolveByID(_ context.Context, id string) (*domain.Identity, error) {
	if identity, ok := s.identities[id]; ok {
		return &identity, nil
	}
	return nil, errors.New("not found")
}

func (s *stubDirectory) ResolveManyByIDs(context.Context, []string) (map[string]domain.Identity, error) {
	return nil, errors.New("not implemented")
}

func (s *stubDirectory) SearchByPrefix(context.Context, string, int) ([]domain.Identity, error) {
	return nil, errors.New("not implemented")
}

func decodeErrorCode(t *testing.T, resp *nethttp.Response) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func TestErrorMiddlewareMapsRoleGuardToForbidden(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 30)
	dir := &stubDirectory{identities: map[string]domain.Identity{
		"stu1": {ID: "stu1", Role: domain.RoleStudent, Username: "alice"},
	}}
	middleware := auth.NewAuthMiddleware(tokens, dir)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	app.Patch("/queries/:id/status", middleware.Handle, auth.RequireFaculty(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	token, _, err := tokens.GenerateToken("stu1", domain.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req := httptest.NewRequest(nethttp.MethodPatch, "/queries/q1/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != nethttp.StatusForbidden {
		t.Fatalf("status = %d, want 403 for a student on a faculty route", resp.StatusCode)
	}
	if code := decodeErrorCode(t, resp); code != "FORBIDDEN" {
		t.Fatalf("error code = %q, want FORBIDDEN", code)
	}
}

func TestErrorMiddlewareMapsUnauthenticatedRequest(t *testing.T) {
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	app.Get("/guarded", auth.RequireFaculty(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/guarded", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != nethttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without a principal", resp.StatusCode)
	}
	if code := decodeErrorCode(t, resp); code != "UNAUTHORIZED" {
		t.Fatalf("error code = %q, want UNAUTHORIZED", code)
	}
}
