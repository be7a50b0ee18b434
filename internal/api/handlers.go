package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"familybooking/internal/calendar"
	"familybooking/internal/export"
	"familybooking/internal/models"
	"familybooking/internal/timeslot"
)

const maxBodyBytes = 64 << 10

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))

	var bookings []models.Booking
	if from == "" && to == "" {
		bookings = s.bookings.List(r.Context())
	} else {
		var err error
		bookings, err = s.bookings.ListByDateRange(r.Context(), from, to)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := s.bookings.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	data, ok := decodeForm(w, r)
	if !ok {
		return
	}

	booking, err := s.bookings.Create(r.Context(), data)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	data, ok := decodeForm(w, r)
	if !ok {
		return
	}

	booking, err := s.bookings.Update(r.Context(), r.PathValue("id"), data)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := s.bookings.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleFamilyMembers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"familyMembers": s.registry.Members()})
}

func (s *HTTPServer) handleTimeSlots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"timeSlots": timeslot.LabeledSlots()})
}

func (s *HTTPServer) handleCalendarEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, calendar.ToEvents(s.bookings.List(r.Context()), s.registry))
}

func (s *HTTPServer) handleCalendarICS(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := calendar.WriteICS(&buf, s.bookings.List(r.Context()), s.registry, calendar.ICSOptions{Logger: s.logger})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="bookings.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))

	bookings, err := s.bookings.ListByDateRange(r.Context(), from, to)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.exporter.Write(&buf, bookings, from, to); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(from, to)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func decodeForm(w http.ResponseWriter, r *http.Request) (models.BookingFormData, bool) {
	var data models.BookingFormData

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return data, false
	}
	return data, true
}
