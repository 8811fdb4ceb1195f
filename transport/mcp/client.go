package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/same-game/game/engine"
	"github.com/wricardo/same-game/game/service"
)

// cellSymbols label palette colours by index in grid renderings
const cellSymbols = "ABCDEFGHIJKLMNOP"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Same Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Same Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Clear the board of coloured balls. Selecting a ball removes it together with
every orthogonally connected ball of the same colour, as long as the group has
at least two balls. A group of n balls scores n^2 points. Remaining balls
fall toward row 0 and columns close toward column 0. The game ends when no
group of two or more is left.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions: List all active sessions
- game_state: Get the board, score and high score
- select_ball: Remove the group at (x, y)
- preview_score: Show what selecting (x, y) would score
- hint: Suggest the highest scoring selection
- reset_game: Deal a fresh board
- move_history: View past selections
- list_configs: List available configurations
- game_instructions: Get the rules and scoring in detail`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func coordinateProperties() map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionProperty(),
		"x": map[string]interface{}{
			"type":        "integer",
			"description": "Column of the ball (0-based, column 0 on the left)",
		},
		"y": map[string]interface{}{
			"type":        "integer",
			"description": "Row of the ball (0-based, row 0 at the bottom)",
		},
	}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "ID of the config to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, score and high score",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_ball",
		Description: "Select the ball at (x, y), removing its group if it has two or more balls",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: coordinateProperties(),
			Required:   []string{"session_id", "x", "y"},
		},
	}, c.handleSelectBall)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "preview_score",
		Description: "Show the group at (x, y) and the points selecting it would score, without changing the board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: coordinateProperties(),
			Required:   []string{"session_id", "x", "y"},
		},
	}, c.handlePreviewScore)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "Suggest the selection that scores the most points right now",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Deal a fresh board; the high score is kept",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get selection history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules, scoring and coordinate system",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// toolError logs a failed tool call and reports it to the agent
func toolError(tool string, err error) *mcp.CallToolResult {
	log.WithError(err).WithField("tool", tool).Debug("MCP tool call failed")
	return mcp.NewToolResultError(err.Error())
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// coordinates reads the x and y arguments; JSON numbers arrive as float64
// and must be whole
func coordinates(args map[string]interface{}) (int, int, error) {
	x, okX := args["x"].(float64)
	y, okY := args["y"].(float64)
	if !okX || !okY {
		return 0, 0, fmt.Errorf("x and y are required integers")
	}
	if x != math.Trunc(x) || y != math.Trunc(y) {
		return 0, 0, fmt.Errorf("x and y must be whole numbers, got (%v,%v)", x, y)
	}
	return int(x), int(y), nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configName, _ := args["config_name"].(string)

	body := map[string]string{}
	if configName != "" {
		body["config_name"] = configName
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return toolError("create_session", err), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return toolError("list_sessions", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		score, left := 0, 0
		if s.GameState != nil {
			score, left = s.GameState.Score, s.GameState.BallsLeft
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Score: %d, Balls left: %d, Created: %s)\n",
			s.ID, s.ConfigName, score, left, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return toolError("game_state", err), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleSelectBall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, y, err := coordinates(args)
	if err != nil {
		return toolError("select_ball", err), nil
	}

	var result service.SelectResult
	body := map[string]int{"x": x, "y": y}
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/select"), body, &result); err != nil {
		return toolError("select_ball", err), nil
	}

	return mcp.NewToolResultText(formatSelectResult(&result)), nil
}

func (c *Client) handlePreviewScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, y, err := coordinates(args)
	if err != nil {
		return toolError("preview_score", err), nil
	}

	var preview service.PreviewResult
	path := sessionPath(sessionID, fmt.Sprintf("/preview?x=%d&y=%d", x, y))
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &preview); err != nil {
		return toolError("preview_score", err), nil
	}

	return mcp.NewToolResultText(formatPreview(&preview)), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var hint service.HintResult
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/hint"), nil, &hint); err != nil {
		return toolError("hint", err), nil
	}

	if !hint.Available {
		return mcp.NewToolResultText(hint.Message), nil
	}
	result := fmt.Sprintf("Best selection: (%d,%d) removes %d balls for %d points\nRemovable groups on the board: %d",
		hint.Position.X, hint.Position.Y, hint.GroupSize, hint.Score, hint.Groups)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return toolError("reset_game", err), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprint(int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprint(int(limit)))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return toolError("move_history", err), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return toolError("list_configs", err), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		colours := make([]string, len(config.Palette))
		for i, c := range config.Palette {
			colours[i] = string(c)
		}
		fmt.Fprintf(&b, "• %s (id: %s)\n  %s\n  Board: %dx%d, Colours: %s\n\n",
			config.Name, config.ConfigID, config.Description, config.Width, config.Height, strings.Join(colours, ", "))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Same Game - Instructions

OBJECTIVE:
Remove as many balls as possible, scoring big groups. Clearing large groups is
worth far more than clearing many small ones.

RULES:
• Selecting a ball finds every ball of the same colour reachable through
  up/down/left/right neighbours. Diagonals do not connect.
• A group of two or more balls is removed. A lone ball cannot be removed.
• Removing n balls scores n^2 points: 2 balls score 4, 3 score 9,
  10 score 100.
• After a removal, balls fall toward row 0 to fill gaps, then empty columns
  close up toward column 0.
• The game ends when no two adjacent balls share a colour. If the final score
  beats (or ties) the recorded high score for the configuration, it is saved.

COORDINATES:
• x is the column, 0 on the left.
• y is the row, 0 at the bottom. game_state prints the top row first.
• Each colour is shown as a letter; the legend lists which letter is which.
  A dot is an empty cell.

STRATEGY:
• Use preview_score before committing to a selection.
• Removing small groups of a colour first lets the rest of that colour merge
  into one big group.
• hint reports the best single move, which is not always the best plan.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func symbolFor(palette engine.Palette, cell engine.Cell) string {
	if cell.IsEmpty() {
		return "."
	}
	for i, c := range palette {
		if c == cell.Colour && i < len(cellSymbols) {
			return string(cellSymbols[i])
		}
	}
	return "?"
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Board: %dx%d | Score: %d | High score: %d | Balls left: %d | Moves: %d\n",
		state.Width, state.Height, state.Score, state.HighScore, state.BallsLeft, state.Moves)

	legend := make([]string, 0, len(state.Palette))
	for i, c := range state.Palette {
		if i < len(cellSymbols) {
			legend = append(legend, fmt.Sprintf("%c=%s", cellSymbols[i], c))
		}
	}
	fmt.Fprintf(&b, "Legend: %s\n\n", strings.Join(legend, " "))

	// top row first so balls visually fall down
	for y := state.Height - 1; y >= 0; y-- {
		fmt.Fprintf(&b, "%2d ", y)
		for x := 0; x < state.Width && x < len(state.Grid); x++ {
			if y < len(state.Grid[x]) {
				b.WriteString(symbolFor(state.Palette, state.Grid[x][y]))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("   ")
	for x := 0; x < state.Width; x++ {
		b.WriteString(fmt.Sprint(x % 10))
	}
	b.WriteString("\n")

	if state.GameOver {
		b.WriteString("\nGAME OVER")
		if state.NewRecord {
			b.WriteString(" - NEW HIGH SCORE!")
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

func formatSelectResult(result *service.SelectResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ Removed %d %s balls at (%d,%d) for %d points\n",
			result.Removed, result.Colour, result.Position.X, result.Position.Y, result.Points)
	} else {
		fmt.Fprintf(&b, "✗ Nothing removed at (%d,%d)\n", result.Position.X, result.Position.Y)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatPreview(preview *service.PreviewResult) string {
	if !preview.Removable {
		if preview.Colour == "" {
			return fmt.Sprintf("(%d,%d) is empty", preview.Position.X, preview.Position.Y)
		}
		return fmt.Sprintf("(%d,%d) is a lone %s ball and cannot be removed", preview.Position.X, preview.Position.Y, preview.Colour)
	}

	cells := make([]string, len(preview.Group))
	for i, p := range preview.Group {
		cells[i] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	return fmt.Sprintf("Selecting (%d,%d) removes %d %s balls for %d points\nGroup: %s",
		preview.Position.X, preview.Position.Y, preview.GroupSize, preview.Colour, preview.Score, strings.Join(cells, " "))
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) - Total: %d\n\n", history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		fmt.Fprintf(&b, "%d. (%d,%d) %s removed=%d points=%d score=%d\n",
			move.MoveNumber, move.Position.X, move.Position.Y, status, move.Removed, move.Points, move.ScoreAfter)
	}

	return b.String()
}
