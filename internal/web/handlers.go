package web

import (
	"encoding/base64"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"attendance-monitor/internal/account"
	"attendance-monitor/internal/apperrors"
	"attendance-monitor/internal/attendance"
	"attendance-monitor/internal/auth"
	"attendance-monitor/internal/reporting"
)

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type submitForm struct {
	Session string `form:"session" binding:"required"`
	Status  string `form:"status" binding:"required"`
}

type editForm struct {
	Status string `form:"status" binding:"required"`
}

type registerForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Role     string `form:"role" binding:"required"`
}

// writeError turns err into a plain-text response with the matching status.
func (h *handlers) writeError(c *gin.Context, err error) {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.lg.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	_ = c.Error(err)
	c.String(status, apperrors.Message(err))
}

// render adds the signed-in account, if any, to the page data.
func render(c *gin.Context, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if a, ok := auth.Current(c); ok {
		data["Me"] = a
		data["IsAdmin"] = account.IsAdmin(a)
	}
	c.HTML(http.StatusOK, name, data)
}

func me(c *gin.Context) account.Account {
	a, _ := auth.Current(c)
	return a
}

// recordID parses :id; anything that is not a positive integer is a 404.
func recordID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.String(http.StatusNotFound, "Not Found")
		return 0, false
	}
	return uint(id), true
}

func (h *handlers) index(c *gin.Context) {
	render(c, "index.html", nil)
}

func (h *handlers) loginForm(c *gin.Context) {
	render(c, "login.html", nil)
}

func (h *handlers) login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.writeError(c, apperrors.Unauthenticated("Invalid username or password"))
		return
	}
	a, err := h.Accounts.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.Sessions.Login(c, a); err != nil {
		h.writeError(c, err)
		return
	}
	h.lg.Info().Uint("accountID", a.ID).Str("username", a.Username).Msg("logged in")
	c.Redirect(http.StatusFound, account.LandingPath(a))
}

func (h *handlers) logout(c *gin.Context) {
	h.Sessions.Logout(c)
	c.Redirect(http.StatusFound, auth.LoginPath)
}

func (h *handlers) attendancePage(c *gin.Context) {
	recs, err := h.Attendance.ListOwn(c.Request.Context(), me(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	render(c, "attendance.html", gin.H{"Records": recs, "Sessions": attendance.Sessions})
}

func (h *handlers) submitAttendance(c *gin.Context) {
	var form submitForm
	if err := c.ShouldBind(&form); err != nil {
		h.writeError(c, apperrors.Validation("session and status are required"))
		return
	}
	if _, err := h.Attendance.Submit(c.Request.Context(), me(c), form.Session, form.Status); err != nil {
		h.writeError(c, err)
		return
	}
	h.attendancePage(c)
}

func (h *handlers) reports(c *gin.Context) {
	recs, err := h.Reports.Report(c.Request.Context(), me(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	render(c, "reports.html", gin.H{"Records": recs})
}

func (h *handlers) deleteAttendance(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}
	if err := h.Attendance.Delete(c.Request.Context(), id, me(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/reports")
}

func (h *handlers) editForm(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}
	rec, err := h.Attendance.Get(c.Request.Context(), id, me(c))
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			err = apperrors.Forbidden("You are not authorized to edit this record.")
		}
		h.writeError(c, err)
		return
	}
	render(c, "edit_attendance.html", gin.H{"Record": rec})
}

func (h *handlers) editAttendance(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}
	var form editForm
	if err := c.ShouldBind(&form); err != nil {
		h.writeError(c, apperrors.Validation("status is required"))
		return
	}
	if _, err := h.Attendance.Edit(c.Request.Context(), id, form.Status, me(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/reports")
}

func (h *handlers) dashboard(c *gin.Context) {
	rows, err := h.Reports.Dashboard(c.Request.Context(), me(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	render(c, "dashboard.html", gin.H{"Members": rows})
}

func (h *handlers) analytics(c *gin.Context) {
	sum, err := h.Reports.Analytics(c.Request.Context(), me(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	data := gin.H{"Summary": sum}
	png, err := h.Chart.RenderPie(sum.Present, sum.Absent)
	switch {
	case errors.Is(err, reporting.ErrNoChartData):
	case err != nil:
		h.writeError(c, err)
		return
	default:
		data["Chart"] = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	}
	render(c, "analytics.html", data)
}

func (h *handlers) registerForm(c *gin.Context) {
	render(c, "register.html", gin.H{"Roles": account.MemberRoles})
}

func (h *handlers) register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.writeError(c, apperrors.Validation("username, password and role are required"))
		return
	}
	if _, err := h.Accounts.Register(c.Request.Context(), me(c), form.Username, form.Password, form.Role); err != nil {
		h.writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}
