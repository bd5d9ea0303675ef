package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	ballotengine "clubvote/contexts/club-elections/ballot-engine"
	ballotdomainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"
	ballothttp "clubvote/contexts/club-elections/ballot-engine/transport/http"

	_ "clubvote/internal/platform/httpserver/docs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	maxRequestBodyBytes = 1 << 20
	shutdownTimeout     = 10 * time.Second
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	ballots  ballotengine.Module
	gatherer prometheus.Gatherer
}

func New(
	ballots ballotengine.Module,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		ballots:  ballots,
		gatherer: gatherer,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	return s.Run(context.Background())
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting",
			"event", "http_server_starting",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"addr", s.addr,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.mux.HandleFunc("POST /api/votes/cast", s.handleCastVote)
	s.mux.HandleFunc("POST /api/votes/bulk", s.handleCastBulkBallot)
	s.mux.HandleFunc("POST /api/votes/verify", s.handleVerifyReceipt)
	s.mux.HandleFunc("GET /api/votes/progress/{election_id}", s.handleVotingProgress)
	s.mux.HandleFunc("GET /api/votes/status/{election_id}", s.handleVoterStatus)
	s.mux.HandleFunc("GET /api/votes/turnout/{election_id}", s.handleElectionTurnout)
	s.mux.HandleFunc("GET /api/votes/results/position/{position_id}", s.handlePositionLeaderboard)
	s.mux.HandleFunc("GET /api/votes/winners/{election_id}", s.handleOfficialWinners)
	s.mux.HandleFunc("GET /api/votes/analytics/election/{election_id}", s.handleElectionAnalytics)
	s.mux.HandleFunc("GET /api/votes/analytics/candidate/{candidate_id}", s.handleCandidateScorecard)

	s.mux.HandleFunc("POST /api/candidates/promote/{application_id}", s.handlePromote)
	s.mux.HandleFunc("PATCH /api/candidates/{candidate_id}/disqualify", s.handleDisqualify)
	s.mux.HandleFunc("POST /api/candidates/withdraw", s.handleWithdraw)
	s.mux.HandleFunc("GET /api/candidates/election/{election_id}", s.handleElectionBallot)
	s.mux.HandleFunc("GET /api/candidates/election/{election_id}/position/{position_id}", s.handlePositionBallot)
	s.mux.HandleFunc("GET /api/candidates/{candidate_id}", s.handleCandidateProfile)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	voterID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req ballothttp.CastVoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.ballots.Handler.CastVoteHandler(r.Context(), voterID, req)
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCastBulkBallot(w http.ResponseWriter, r *http.Request) {
	voterID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req ballothttp.CastBulkBallotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.ballots.Handler.CastBulkBallotHandler(r.Context(), voterID, req)
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerifyReceipt(w http.ResponseWriter, r *http.Request) {
	var req ballothttp.VerifyReceiptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.ballots.Handler.VerifyReceiptHandler(r.Context(), req)
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVotingProgress(w http.ResponseWriter, r *http.Request) {
	voterID, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.ballots.Handler.VotingProgressHandler(r.Context(), voterID, r.PathValue("election_id"))
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoterStatus(w http.ResponseWriter, r *http.Request) {
	voterID, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.ballots.Handler.VoterStatusHandler(r.Context(), voterID, r.PathValue("election_id"))
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleElectionTurnout(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.ElectionTurnoutHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePositionLeaderboard(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.PositionLeaderboardHandler(r.Context(), r.PathValue("position_id"))
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOfficialWinners(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.OfficialWinnersHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleElectionAnalytics(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.ElectionAnalyticsHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCandidateScorecard(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.CandidateScorecardHandler(r.Context(), r.PathValue("candidate_id"))
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.ballots.Handler.PromoteHandler(r.Context(), actorID, r.PathValue("application_id"))
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	status := http.StatusCreated
	if resp.AlreadyPromoted {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleDisqualify(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req ballothttp.DisqualifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.ballots.Handler.DisqualifyHandler(r.Context(), actorID, r.PathValue("candidate_id"), req)
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req ballothttp.WithdrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.ballots.Handler.WithdrawHandler(r.Context(), actorID, req)
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleElectionBallot(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.ElectionBallotHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePositionBallot(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.PositionBallotHandler(r.Context(), r.PathValue("election_id"), r.PathValue("position_id"))
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCandidateProfile(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.CandidateProfileHandler(r.Context(), r.PathValue("candidate_id"))
	if err != nil {
		s.writeBallotDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeBallotDomainError maps an error kind onto a status. Unclassified
// failures are logged here and answered with a generic message.
func (s *Server) writeBallotDomainError(w http.ResponseWriter, r *http.Request, err error) {
	kind := ballotdomainerrors.KindOf(err)
	switch kind {
	case ballotdomainerrors.KindInvalidInput:
		writeBallotError(w, http.StatusBadRequest, string(kind), err.Error())
	case ballotdomainerrors.KindNotFound:
		writeBallotError(w, http.StatusNotFound, string(kind), err.Error())
	case ballotdomainerrors.KindElectionNotOpen,
		ballotdomainerrors.KindDuplicateVote,
		ballotdomainerrors.KindInvalidState:
		writeBallotError(w, http.StatusConflict, string(kind), err.Error())
	default:
		s.logger.Error("ballot request failed",
			"event", "ballot_http_internal_error",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
		writeBallotError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeBallotError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ballothttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeBallotError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
