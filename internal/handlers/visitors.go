package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"consultdesk/internal/logger"
	"consultdesk/internal/models"
	"consultdesk/internal/util"
	"consultdesk/internal/visitorpass"

	"github.com/julienschmidt/httprouter"
)

type VisitorHandler struct {
	db   *sql.DB
	pass *visitorpass.Issuer
	loc  *time.Location
}

func NewVisitorHandler(conn *sql.DB, pass *visitorpass.Issuer, loc *time.Location) *VisitorHandler {
	return &VisitorHandler{db: conn, pass: pass, loc: loc}
}

type checkInRequest struct {
	FullName        string `json:"fullName"`
	Phone           string `json:"phone"`
	Purpose         string `json:"purpose"`
	HostCounselorID string `json:"hostCounselorId"`
}

// POST /visitors
func (h *VisitorHandler) CheckIn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req checkInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := required(map[string]string{"fullName": req.FullName, "purpose": req.Purpose}); err != nil {
		writeError(w, r, err)
		return
	}
	hostID, err := parseOptionalUUID(req.HostCounselorID, "hostCounselorId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if hostID.Valid {
		if _, err := models.GetCounselorByID(r.Context(), h.db, hostID.UUID); err != nil {
			writeError(w, r, err)
			return
		}
	}

	v := &models.Visitor{
		FullName:        strings.TrimSpace(req.FullName),
		Phone:           models.NullString(strings.TrimSpace(req.Phone)),
		Purpose:         strings.TrimSpace(req.Purpose),
		HostCounselorID: hostID,
	}
	if err := models.CheckInVisitor(r.Context(), h.db, v); err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("Visitor checked in", "visitor", v.ID, "purpose", v.Purpose)
	jsonSuccess(w, http.StatusCreated, "Visitor checked in", map[string]interface{}{
		"visitor": toVisitorResponse(v),
		"passUrl": "/api/visitors/" + v.ID.String() + "/pass.png",
	})
}

// POST /visitors/:id/checkout
func (h *VisitorHandler) CheckOut(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := models.CheckOutVisitor(r.Context(), h.db, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, "Visitor checked out", map[string]interface{}{"visitor": toVisitorResponse(v)})
}

// GET /visitors?date=YYYY-MM-DD, defaulting to today.
func (h *VisitorHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	day := time.Now().In(h.loc)
	if s := strings.TrimSpace(r.URL.Query().Get("date")); s != "" {
		parsed, err := util.ParseDateIn(s, h.loc)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		day = parsed
	}
	visitors, err := models.ListVisitorsOn(r.Context(), h.db, day, h.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]visitorResponse, 0, len(visitors))
	for _, v := range visitors {
		out = append(out, toVisitorResponse(v))
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"date":     day.Format(util.DateLayout),
		"visitors": out,
	})
}

// GET /visitors/:id/pass.png
func (h *VisitorHandler) PassPNG(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, ok := h.lookup(w, r, ps)
	if !ok {
		return
	}
	png, err := h.pass.PNG(v, 256)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// GET /visitors/:id/pass.pdf
func (h *VisitorHandler) PassPDF(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, ok := h.lookup(w, r, ps)
	if !ok {
		return
	}
	pdf, err := h.pass.PDF(v, h.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=visitor-pass.pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

type verifyPassRequest struct {
	Payload string `json:"payload"`
}

// POST /visitor-passes/verify
func (h *VisitorHandler) VerifyPass(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req verifyPassRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.pass.Verify(req.Payload)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonSuccess(w, http.StatusOK, "Pass is valid", map[string]interface{}{"visitorId": id})
}

func (h *VisitorHandler) lookup(w http.ResponseWriter, r *http.Request, ps httprouter.Params) (*models.Visitor, bool) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	v, err := models.GetVisitorByID(r.Context(), h.db, id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return v, true
}
