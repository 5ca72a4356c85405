package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	apperrors "unreal-mcp-go/internal/errors"
	"unreal-mcp-go/internal/scenario"
	"unreal-mcp-go/internal/storage"

	"github.com/gin-gonic/gin"
)

// startRun runs a scenario synchronously and returns its report. An empty
// body runs the built-in component reference smoke test; ?blueprint= pins
// its blueprint name. A failed run still answers 200 with the report.
func (h *handler) startRun(c *gin.Context) {
	if h.deps.Client == nil {
		writeError(c, apperrors.New(apperrors.KindDial, "run", "", "no Unreal client configured"))
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, apperrors.Wrap(apperrors.KindInvalidArgument, "read", "", err))
		return
	}

	var sc *scenario.Scenario
	if len(strings.TrimSpace(string(body))) == 0 {
		name := c.Query("blueprint")
		if name == "" {
			sf := h.cfg().Scenario
			name = scenario.BlueprintName(sf.BlueprintPrefix, sf.SuffixLength)
		}
		sc = scenario.ComponentReference(name)
	} else {
		sc, err = scenario.Parse(body, ".json")
		if err != nil {
			if apperrors.Is(err, apperrors.KindConfig) {
				err = apperrors.Wrap(apperrors.KindInvalidArgument, "parse", "", err)
			}
			writeError(c, err)
			return
		}
	}

	runner := &scenario.Runner{
		Caller:    h.deps.Client,
		Publisher: h.deps.Hub,
		Address:   h.deps.Client.Address(),
	}
	if h.deps.Storage != nil {
		runner.Recorder = h.deps.Storage
	}
	report, err := runner.Run(c.Request.Context(), sc)
	if report == nil {
		writeError(c, err)
		return
	}
	c.Set("run_id", report.ID)
	c.JSON(http.StatusOK, report)
}

func (h *handler) requireStorage(c *gin.Context) bool {
	if h.deps.Storage == nil {
		c.JSON(http.StatusServiceUnavailable, apperrors.Payload{
			Status: "error",
			Error:  "run history is disabled",
			Kind:   apperrors.KindConfig,
		})
		return false
	}
	return true
}

func storageError(c *gin.Context, err error) {
	if storage.IsNotFound(err) {
		writeError(c, apperrors.Wrap(apperrors.KindNotFound, "storage", "", err))
		return
	}
	writeError(c, apperrors.Wrap(apperrors.KindInternal, "storage", "", err))
}

func (h *handler) listRuns(c *gin.Context) {
	if !h.requireStorage(c) {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(c, apperrors.Newf(apperrors.KindInvalidArgument, "list", "", "invalid limit %q", raw))
			return
		}
		limit = n
	}
	runs, err := h.deps.Storage.ListRuns(c.Request.Context(), limit)
	if err != nil {
		storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

func (h *handler) getRun(c *gin.Context) {
	if !h.requireStorage(c) {
		return
	}
	run, err := h.deps.Storage.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *handler) deleteRun(c *gin.Context) {
	if !h.requireStorage(c) {
		return
	}
	if err := h.deps.Storage.DeleteRun(c.Request.Context(), c.Param("id")); err != nil {
		storageError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
