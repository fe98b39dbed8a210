package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/honeywatch/console/internal/connection"
	"github.com/honeywatch/console/internal/inventory"
	"github.com/honeywatch/console/internal/version"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 1000
)

// Health states.
const (
	healthHealthy   = "healthy"
	healthDegraded  = "degraded"
	healthUnhealthy = "unhealthy"
)

type healthResponse struct {
	Status     string         `json:"status"`
	Components map[string]any `json:"components"`
}

// degrade lowers the overall status, never raising it.
func (h *healthResponse) degrade(to string) {
	if h.Status == healthUnhealthy {
		return
	}
	if to == healthUnhealthy || h.Status == healthHealthy {
		h.Status = to
	}
}

func (s *Server) getHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	health := healthResponse{
		Status:     healthHealthy,
		Components: make(map[string]any),
	}

	if s.deps.Stream != nil {
		st := s.deps.Stream.Stats()
		health.Components["stream"] = gin.H{
			"state":    st.State,
			"attempts": st.Attempts,
			"connects": st.Connects,
			"received": st.MessagesReceived,
		}
		switch st.State {
		case connection.StateConnected:
		case connection.StateGaveUp:
			health.degrade(healthUnhealthy)
		default:
			health.degrade(healthDegraded)
		}
	}

	if s.deps.Assets != nil {
		st := s.deps.Assets.Stats()
		component := gin.H{
			"honeypots": st.Honeypots,
			"synced":    s.deps.Assets.Synced(),
		}
		if !st.LastSyncAt.IsZero() {
			component["last_sync"] = st.LastSyncAt
		}
		if st.LastError != "" {
			component["error"] = st.LastError
		}
		health.Components["inventory"] = component
		if !s.deps.Assets.Synced() {
			health.degrade(healthDegraded)
		}
	}

	if s.deps.Events != nil {
		if err := s.deps.Events.Ping(ctx); err != nil {
			health.degrade(healthUnhealthy)
			health.Components["journal"] = gin.H{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			m := s.deps.Events.Stats()
			health.Components["journal"] = gin.H{
				"status":  "connected",
				"inserts": m.Inserts,
				"dropped": m.Dropped,
			}
		}
	}

	health.Components["relay"] = gin.H{"clients": s.hub.Clients()}

	code := http.StatusOK
	if health.Status == healthUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, health)
}

func (s *Server) getAssets(c *gin.Context) {
	if s.deps.Assets == nil {
		unavailable(c, "inventory")
		return
	}
	c.JSON(http.StatusOK, s.deps.Assets.Assets(s.deps.Now()))
}

func (s *Server) getAsset(c *gin.Context) {
	if s.deps.Assets == nil {
		unavailable(c, "inventory")
		return
	}

	asset, err := s.deps.Assets.Asset(c.Param("id"), s.deps.Now())
	if errors.Is(err, inventory.ErrUnknownHoneypot) {
		c.JSON(http.StatusNotFound, gin.H{"error": "honeypot not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (s *Server) getStatus(c *gin.Context) {
	if s.deps.Status == nil {
		unavailable(c, "status poller")
		return
	}

	snap, ok := s.deps.Status.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no status snapshot yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) getEvents(c *gin.Context) {
	if s.deps.Events == nil {
		unavailable(c, "journal")
		return
	}

	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxEventLimit)
	}

	records, err := s.deps.Events.Recent(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read journal", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read journal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(records),
		"events": records,
	})
}

func (s *Server) getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

func unavailable(c *gin.Context, component string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": component + " not configured"})
}

// isLocalOrigin accepts http(s)://localhost:* and http(s)://127.0.0.1:*.
func isLocalOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
