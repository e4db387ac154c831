package http

import (
	"net/http"
	"time"

	"github.com/couchcryptid/sardis-lake-service/internal/domain"
)

// maxHistoryHours bounds /api/water-level/history to thirty days.
const maxHistoryHours = 24 * 30

type lakeResponse struct {
	Lake  domain.LakeProfile `json:"lake"`
	Ramps []domain.BoatRamp  `json:"ramps"`
}

func (s *Server) handleLake(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, lakeResponse{Lake: s.deps.Lake, Ramps: s.deps.Ramps})
}

type floodResponse struct {
	ElevationFt float64 `json:"elevation_ft"`
	Approximate bool    `json:"approximate"`
	domain.FloodImpact
}

func (s *Server) handleFloodImpact(w http.ResponseWriter, r *http.Request) {
	elevation, approximate, ok := s.elevationParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, floodResponse{
		ElevationFt: elevation,
		Approximate: approximate,
		FloodImpact: domain.EstimateFloodImpact(elevation, s.deps.Lake.NormalPool),
	})
}

type rampsResponse struct {
	ElevationFt float64             `json:"elevation_ft"`
	Approximate bool                `json:"approximate"`
	Ramps       []domain.RampStatus `json:"ramps"`
	Summary     domain.RampSummary  `json:"summary"`
}

func (s *Server) handleRamps(w http.ResponseWriter, r *http.Request) {
	elevation, approximate, ok := s.elevationParam(w, r)
	if !ok {
		return
	}
	statuses := domain.ClassifyRamps(elevation, s.deps.Ramps)
	writeJSON(w, http.StatusOK, rampsResponse{
		ElevationFt: elevation,
		Approximate: approximate,
		Ramps:       statuses,
		Summary:     domain.SummarizeRamps(statuses, elevation, s.deps.Lake.NormalPool),
	})
}

// elevationParam reads ?elevation, defaulting to the latest refreshed
// reading. It writes a 400 and returns ok=false on a malformed value.
func (s *Server) elevationParam(w http.ResponseWriter, r *http.Request) (elevation float64, approximate, ok bool) {
	v, present, err := optionalFloat(r.URL.Query(), "elevation")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return 0, false, false
	}
	if present {
		return v, false, true
	}
	current := s.deps.State.Elevation()
	return current.Value.Value, current.Approximate, true
}

type fishingResponse struct {
	Approximate bool `json:"approximate"`
	domain.FishingConditions
}

func (s *Server) handleFishing(w http.ResponseWriter, r *http.Request) {
	waterTemp, hasWaterTemp, err := optionalFloat(r.URL.Query(), "waterTemp")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	forecast := s.deps.State.Forecast()
	if !forecast.OK() {
		writeJSON(w, http.StatusOK, fishingResponse{Approximate: true, FishingConditions: domain.DefaultFishingConditions()})
		return
	}
	current := forecast.Value.Current
	if !hasWaterTemp {
		waterTemp = domain.EstimateWaterTemp(current.TemperatureF)
	}
	writeJSON(w, http.StatusOK, fishingResponse{
		FishingConditions: domain.ScoreFishing(current, waterTemp, domain.Now().In(s.deps.Location)),
	})
}

type astronomyResponse struct {
	Date           string                 `json:"date"`
	Moon           domain.MoonPhaseInfo   `json:"moon"`
	Sun            *domain.SunWindows     `json:"sun,omitempty"`
	SunApproximate bool                   `json:"sun_approximate"`
	Solunar        []domain.SolunarPeriod `json:"solunar"`
}

func (s *Server) handleAstronomy(w http.ResponseWriter, r *http.Request) {
	day, err := queryDate(r.URL.Query(), "date", domain.Now(), s.deps.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	moon := domain.MoonPhase(day)
	resp := astronomyResponse{
		Date:    day.Format(time.DateOnly),
		Moon:    moon,
		Solunar: domain.SolunarPeriods(day, float64(moon.IlluminationPercent)),
	}

	forecast := s.deps.State.Forecast()
	if rise, set, ok := forecast.Value.SunTimesOn(resp.Date, s.deps.Location); ok && forecast.OK() {
		sw := domain.SunWindowsFor(rise, set)
		resp.Sun = &sw
	} else if rise, set, ok := domain.ApproxSunTimes(day, s.deps.Lake.Lat, s.deps.Lake.Lon); ok {
		sw := domain.SunWindowsFor(rise, set)
		resp.Sun = &sw
		resp.SunApproximate = true
	}
	writeJSON(w, http.StatusOK, resp)
}

type recreationResponse struct {
	Approximate bool               `json:"approximate"`
	Days        []domain.DayRating `json:"days"`
}

func (s *Server) handleRecreation(w http.ResponseWriter, _ *http.Request) {
	forecast := s.deps.State.Forecast()
	writeJSON(w, http.StatusOK, recreationResponse{
		Approximate: !forecast.OK(),
		Days:        domain.RateForecast(forecast.Value.Daily),
	})
}

func (s *Server) handleConditions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.State.Snapshot(domain.Now().In(s.deps.Location)))
}

type historyResponse struct {
	Hours    int                       `json:"hours"`
	Readings []domain.ElevationReading `json:"readings"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeError(w, http.StatusNotFound, "history_disabled", "water-level history is not configured")
		return
	}
	hours, err := queryInt(r.URL.Query(), "hours", 24)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	hours = min(max(hours, 1), maxHistoryHours)

	readings, err := s.deps.History.Since(r.Context(), domain.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		s.logger.Error("history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history_unavailable", "could not read water-level history")
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Hours: hours, Readings: readings})
}
