package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tidianesow/medical-e-academy/internal/handler"
	"github.com/tidianesow/medical-e-academy/internal/service"
)

type stubStudyService struct {
	uids []string
	err  error
}

func (s stubStudyService) ListStudyUIDs(context.Context) ([]string, error) {
	return s.uids, s.err
}

func studyApp(svc service.StudyService) *fiber.App {
	app := fiber.New()
	handler.NewStudyHandler(svc, zerolog.Nop()).Register(app.Group("/api/dicom"))
	return app
}

func TestStudyHandlerListsUIDs(t *testing.T) {
	app := studyApp(stubStudyService{uids: []string{"1.2.840.1", "1.2.840.2"}})

	resp, raw := doJSON(t, app, http.MethodGet, "/api/dicom/studies", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var uids []string
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, raw).Data, &uids))
	require.Equal(t, []string{"1.2.840.1", "1.2.840.2"}, uids)
}

func TestStudyHandlerUpstreamFailure(t *testing.T) {
	app := studyApp(stubStudyService{err: fmt.Errorf("%w: connection refused", service.ErrStudiesUnavailable)})

	resp, raw := doJSON(t, app, http.MethodGet, "/api/dicom/studies", "", nil)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.False(t, decodeEnvelope(t, raw).Success)
}
