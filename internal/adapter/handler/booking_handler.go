package handler

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
	"github.com/srgjo27/rail_ticket/internal/core/services"
)

type Auth interface {
	SignUp(ctx context.Context, name, password string) (*domain.User, error)
	Login(ctx context.Context, name, password string) (*domain.User, error)
}

type Search interface {
	SearchTrains(source, destination string) iter.Seq[domain.Train]
	SeatAvailability(ctx context.Context, trainID string) (*domain.SeatAvailability, error)
}

type Booking interface {
	BookSeat(ctx context.Context, req services.BookRequest) (*domain.Ticket, error)
	CancelTicket(ctx context.Context, userID, ticketID string) error
	ListTickets(userID string) ([]domain.Ticket, error)
}

type CredentialsRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type BookSeatRequest struct {
	TrainID     string `json:"train_id" validate:"required"`
	Row         *int   `json:"row" validate:"required,gte=0"`
	Col         *int   `json:"col" validate:"required,gte=0"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	TravelDate  string `json:"travel_date" validate:"omitempty,datetime=2006-01-02"`
}

// UserResponse is the public view of a user; the password hash stays
// inside the service.
type UserResponse struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Tickets []domain.Ticket `json:"tickets"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Tickets: u.Tickets}
}

type BookingHandler struct {
	auth     Auth
	search   Search
	booking  Booking
	validate *validator.Validate
	logger   *slog.Logger
}

func NewBookingHandler(auth Auth, search Search, booking Booking, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		auth:     auth,
		search:   search,
		booking:  booking,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *BookingHandler) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/users", h.SignUp).Methods(http.MethodPost)
	r.HandleFunc("/sessions", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/trains", h.SearchTrains).Methods(http.MethodGet)
	r.HandleFunc("/trains/{trainID}/seats", h.GetSeats).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}/tickets", h.ListTickets).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}/tickets", h.CreateBooking).Methods(http.MethodPost)
	r.HandleFunc("/users/{userID}/tickets/{ticketID}", h.CancelTicket).Methods(http.MethodDelete)

	return r
}

func (h *BookingHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.auth.SignUp(r.Context(), req.Name, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

func (h *BookingHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.auth.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *BookingHandler) SearchTrains(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	trains := []domain.Train{}
	for train := range h.search.SearchTrains(query.Get("source"), query.Get("destination")) {
		trains = append(trains, train)
	}

	writeJSON(w, http.StatusOK, trains)
}

func (h *BookingHandler) GetSeats(w http.ResponseWriter, r *http.Request) {
	availability, err := h.search.SeatAvailability(r.Context(), mux.Vars(r)["trainID"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, availability)
}

func (h *BookingHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.booking.ListTickets(mux.Vars(r)["userID"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tickets)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req BookSeatRequest
	if !h.decode(w, r, &req) {
		return
	}

	ticket, err := h.booking.BookSeat(r.Context(), services.BookRequest{
		UserID:      mux.Vars(r)["userID"],
		TrainID:     req.TrainID,
		Row:         *req.Row,
		Col:         *req.Col,
		Source:      req.Source,
		Destination: req.Destination,
		TravelDate:  req.TravelDate,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ticket)
}

func (h *BookingHandler) CancelTicket(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.booking.CancelTicket(r.Context(), vars["userID"], vars["ticketID"]); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}

	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidRoute),
		errors.Is(err, domain.ErrSeatOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTrainNotFound),
		errors.Is(err, domain.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNameTaken),
		errors.Is(err, domain.ErrSeatUnavailable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
