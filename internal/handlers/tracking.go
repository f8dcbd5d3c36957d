package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reintausend/rfs/internal/models"
)

// maxEventBytes bounds one ingest body.
const maxEventBytes = 64 << 10

// ActionGetTop selects the top-scenarios aggregation on the query endpoint.
const ActionGetTop = "getTop"

// TrackingPaths are the paths both endpoints answer on. /exec keeps the
// URL shape existing web clients already post to.
var TrackingPaths = []string{"/", "/exec"}

// Recorder appends choice events.
type Recorder interface {
	Record(ctx context.Context, req *models.ChoiceEventRequest) error
}

// TopScenarioSource computes today's top scenarios.
type TopScenarioSource interface {
	TopScenarios(ctx context.Context) (*models.TopScenariosResponse, error)
}

// RegisterIngestRoutes registers the write endpoint.
//
// POST / (and /exec)
// - Body: one choice event as JSON, any Content-Type
// - Appends exactly one row; replies {"success":true}
// - Failures reply {"success":false,"error":...} with HTTP 200
func RegisterIngestRoutes(r gin.IRoutes, rec Recorder, log *zap.Logger) {
	h := serve(log, false, func(c *gin.Context) (any, error) {
		body := http.MaxBytesReader(c.Writer, c.Request.Body, maxEventBytes)
		req, err := models.DecodeChoiceEvent(body)
		if err != nil {
			return nil, err
		}

		if err := rec.Record(c.Request.Context(), &req); err != nil {
			return nil, err
		}

		log.Debug("Choice recorded",
			zap.String("session_id", req.SessionID),
			zap.String("round", string(req.Round)),
			zap.String("chosen_scenario_id", req.ChosenScenarioID))
		return models.IngestResponse{Success: true}, nil
	})

	for _, p := range TrackingPaths {
		r.POST(p, h)
	}
}

// RegisterQueryRoutes registers the read endpoint.
//
// GET / (and /exec) ?action=getTop&callback=fn
// - action=getTop: today's top scenarios
// - any other action: {"status":"ok","message":apiName}
// - callback wraps the JSON as fn(json) served as JavaScript
func RegisterQueryRoutes(r gin.IRoutes, src TopScenarioSource, apiName string, log *zap.Logger) {
	h := serve(log, true, func(c *gin.Context) (any, error) {
		if c.Query("action") != ActionGetTop {
			return models.StatusResponse{Status: "ok", Message: apiName}, nil
		}
		return src.TopScenarios(c.Request.Context())
	})

	for _, p := range TrackingPaths {
		r.GET(p, h)
	}
}
