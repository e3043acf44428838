package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pages maps each page path to its template. The pages are shells; their
// data is fetched from the JSON API by the browser.
var Pages = map[string]string{
	"/":          "login.html",
	"/main":      "main.html",
	"/timetable": "timetable.html",
	"/chat":      "chat.html",
	"/chatroom":  "chatroom.html",
	"/anonymous": "anonymous.html",
	"/profile":   "profile.html",
}

type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Show renders the template registered for the matched route.
func (h *PageHandler) Show(c *gin.Context) {
	name, ok := Pages[c.FullPath()]
	if !ok {
		RenderError(c, http.StatusNotFound, "페이지를 찾을 수 없습니다.")
		return
	}
	Render(c, http.StatusOK, name, gin.H{"Title": pageTitles[name]})
}

// NoRoute renders the error page for unknown non-API paths and JSON otherwise.
func (h *PageHandler) NoRoute(c *gin.Context) {
	if acceptsHTML(c) {
		RenderError(c, http.StatusNotFound, "페이지를 찾을 수 없습니다.")
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "요청한 경로가 없습니다."})
}

func acceptsHTML(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}

var pageTitles = map[string]string{
	"login.html":     "로그인",
	"main.html":      "메인",
	"timetable.html": "시간표",
	"chat.html":      "채팅",
	"chatroom.html":  "채팅방",
	"anonymous.html": "익명 게시판",
	"profile.html":   "프로필",
}
