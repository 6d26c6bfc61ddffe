package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/metrics"
	"github.com/utsavrajji/FixMyArea-sub000/middlewares"
	"github.com/utsavrajji/FixMyArea-sub000/models"
	"github.com/utsavrajji/FixMyArea-sub000/services"
	"github.com/utsavrajji/FixMyArea-sub000/store"
	"github.com/utsavrajji/FixMyArea-sub000/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const recentIssuesLimit = 19

// IssueController serves the citizen-facing issue endpoints.
type IssueController struct {
	issues    store.IssueStore
	directory *services.UserDirectory
	notifier  services.Notifier
	upgrader  websocket.Upgrader
}

func NewIssueController(issues store.IssueStore, directory *services.UserDirectory, notifier services.Notifier, allowedOrigins []string) *IssueController {
	return &IssueController{
		issues:    issues,
		directory: directory,
		notifier:  notifier,
		upgrader:  newUpgrader(allowedOrigins),
	}
}

type createIssueInput struct {
	Title         string          `json:"title" binding:"max=200"`
	Category      string          `json:"category" binding:"required"`
	CategoryOther string          `json:"categoryOther" binding:"max=100"`
	SubIssue      string          `json:"subIssue" binding:"required"`
	SubIssueOther string          `json:"subIssueOther" binding:"max=200"`
	Description   string          `json:"description" binding:"required,max=2000"`
	Location      models.Location `json:"location"`
	PhotoURL      string          `json:"photoURL" binding:"required,url"`
	PhotoPublicID string          `json:"photoPublicId" binding:"required"`
}

// resolveCategory applies the "Other" escape hatch: the free text field
// replaces the enumerated value.
func (in *createIssueInput) resolveCategory() (string, string, error) {
	category := in.Category
	if category == models.OtherOption {
		category = services.CleanText(in.CategoryOther)
		if category == "" {
			return "", "", errors.New("Please describe the category")
		}
	} else if !models.ValidCategory(category) {
		return "", "", errors.New("Invalid category")
	}

	subIssue := in.SubIssue
	switch {
	case subIssue == models.OtherOption:
		subIssue = services.CleanText(in.SubIssueOther)
		if subIssue == "" {
			return "", "", errors.New("Please describe the issue")
		}
	case in.Category == models.OtherOption:
		subIssue = services.CleanText(subIssue)
	case !models.ValidSubIssue(category, subIssue):
		return "", "", errors.New("Invalid sub-issue for category")
	}
	return category, subIssue, nil
}

func cleanLocation(loc models.Location) (models.Location, error) {
	fields := []*string{&loc.State, &loc.District, &loc.Block, &loc.Village, &loc.Panchayat, &loc.HouseNo, &loc.PinCode, &loc.Mobile}
	for _, f := range fields {
		*f = services.CleanText(*f)
	}
	if loc.State == "" || loc.District == "" || loc.Block == "" || loc.Village == "" || loc.Panchayat == "" {
		return loc, errors.New("All location fields are required")
	}
	return loc, nil
}

// CreateIssue handles the creation of a new issue
func (h *IssueController) CreateIssue(c *gin.Context) {
	var input createIssueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, subIssue, err := input.resolveCategory()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	location, err := cleanLocation(input.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	description := services.CleanText(input.Description)
	if description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Description is required"})
		return
	}
	title := services.CleanText(input.Title)
	if title == "" {
		title = subIssue
	}
	if !middlewares.ConsumeQuota(c) {
		return
	}

	issue := models.NewIssue(currentUserID(c), time.Now())
	issue.Title = title
	issue.Category = category
	issue.SubIssue = subIssue
	issue.Description = description
	issue.Location = location
	issue.PhotoURL = strings.TrimSpace(input.PhotoURL)
	issue.PhotoPublicID = strings.TrimSpace(input.PhotoPublicID)

	ctx, cancel := requestContext(c)
	defer cancel()

	err = h.issues.Create(ctx, &issue)
	metrics.IssueOperations.WithLabelValues("create", metrics.Result(err)).Inc()
	if err != nil {
		respondStoreError(c, err, "issue")
		return
	}
	publish(ctx, h.notifier, services.EventCreated, issue.ID.Hex())

	c.JSON(http.StatusCreated, issue)
}

// parseIssueQuery reads the equality filters and sort key from the query
// string. "all" and empty values leave a field unconstrained.
func parseIssueQuery(c *gin.Context) (store.IssueFilter, store.SortKey) {
	get := func(key string) string {
		v := c.Query(key)
		if v == "all" {
			return ""
		}
		return v
	}
	filter := store.IssueFilter{
		State:     get("state"),
		District:  get("district"),
		Block:     get("block"),
		Village:   get("village"),
		Panchayat: get("panchayat"),
		PinCode:   get("pinCode"),
		Category:  get("category"),
		SubIssue:  get("subIssue"),
		Status:    models.IssueStatus(get("status")),
	}
	return filter, store.ParseSort(c.Query("sort"))
}

// GetAllIssues returns every issue matching the query filters.
func (h *IssueController) GetAllIssues(c *gin.Context) {
	filter, sortKey := parseIssueQuery(c)
	h.respondQuery(c, filter, sortKey)
}

// GetMyIssues returns the issues reported by the authenticated user.
func (h *IssueController) GetMyIssues(c *gin.Context) {
	filter, sortKey := parseIssueQuery(c)
	filter.UserID = currentUserID(c)
	h.respondQuery(c, filter, sortKey)
}

func (h *IssueController) respondQuery(c *gin.Context, filter store.IssueFilter, sortKey store.SortKey) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issues, err := h.issues.Query(ctx, filter, sortKey)
	metrics.IssueOperations.WithLabelValues("query", metrics.Result(err)).Inc()
	if err != nil {
		respondStoreError(c, err, "issue")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issues":      issues,
		"totalIssues": len(issues),
	})
}

// GetIssue retrieves an issue by its ID
func (h *IssueController) GetIssue(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := h.issues.Get(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "issue")
		return
	}
	c.JSON(http.StatusOK, issue)
}

// ToggleLike flips the caller's like and returns the stored outcome, which
// clients use to reconcile any optimistic state they showed.
func (h *IssueController) ToggleLike(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	result, err := h.issues.ToggleLike(ctx, id, currentUserID(c))
	metrics.IssueOperations.WithLabelValues("toggle_like", metrics.Result(err)).Inc()
	if err != nil {
		respondStoreError(c, err, "issue")
		return
	}
	publish(ctx, h.notifier, services.EventLiked, id)

	c.JSON(http.StatusOK, result)
}

// AddComment appends a comment by the authenticated user.
func (h *IssueController) AddComment(c *gin.Context) {
	var input struct {
		Text string `json:"text" binding:"required,max=1000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text := services.CleanText(input.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment cannot be empty"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	userID := currentUserID(c)
	name := "Administrator"
	if userID != utils.AdminSubject {
		user, err := h.directory.Lookup(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
				return
			}
			respondStoreError(c, err, "user")
			return
		}
		name = user.Name
	}

	id := c.Param("id")
	issue, err := h.issues.AppendComment(ctx, id, models.Comment{
		UserID:    userID,
		Name:      name,
		Text:      text,
		CreatedAt: time.Now(),
	})
	metrics.IssueOperations.WithLabelValues("comment", metrics.Result(err)).Inc()
	if err != nil {
		respondStoreError(c, err, "issue")
		return
	}
	publish(ctx, h.notifier, services.EventCommented, id)

	c.JSON(http.StatusCreated, gin.H{"comments": issue.Comments})
}

// Retweet records that the caller re-shared the issue.
func (h *IssueController) Retweet(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	issue, err := h.issues.Retweet(ctx, id, currentUserID(c))
	metrics.IssueOperations.WithLabelValues("retweet", metrics.Result(err)).Inc()
	if err != nil {
		respondStoreError(c, err, "issue")
		return
	}
	publish(ctx, h.notifier, services.EventRetweeted, id)

	c.JSON(http.StatusOK, gin.H{"retweets": issue.Retweets, "retweetsCount": len(issue.Retweets)})
}

// RecentIssues returns the most recent issues that carry coordinates, for
// the map view.
func (h *IssueController) RecentIssues(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issues, err := h.issues.RecentWithCoordinates(ctx, recentIssuesLimit)
	if err != nil {
		respondStoreError(c, err, "issue")
		return
	}

	type IssueResponse struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Latitude  float64   `json:"latitude"`
		Longitude float64   `json:"longitude"`
		District  string    `json:"district"`
		Category  string    `json:"category"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"createdAt"`
	}

	response := make([]IssueResponse, 0, len(issues))
	for _, issue := range issues {
		if issue.Location.Coordinates == nil {
			continue
		}
		response = append(response, IssueResponse{
			ID:        issue.ID.Hex(),
			Title:     issue.Title,
			Latitude:  issue.Location.Coordinates.Lat,
			Longitude: issue.Location.Coordinates.Lng,
			District:  issue.Location.District,
			Category:  issue.Category,
			Status:    string(issue.Status),
			CreatedAt: issue.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetIssueOptions lists the category, sub-issue and status enumerations for
// the report form and the status filter dropdowns.
func GetIssueOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": models.IssueCategories,
		"statuses":   models.IssueStatuses,
		"other":      models.OtherOption,
	})
}
