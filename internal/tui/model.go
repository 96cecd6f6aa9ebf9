// AngelaMos | 2026
// model.go

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/qhub-dev/qhub/internal/auth"
	"github.com/qhub-dev/qhub/internal/chat"
	"github.com/qhub-dev/qhub/internal/config"
	"github.com/qhub-dev/qhub/internal/dispatch"
	"github.com/qhub-dev/qhub/internal/ratelimit"
	"github.com/qhub-dev/qhub/internal/user"
)

const (
	// header, activity line, input, footer
	chromeHeight = 4
	authTimeout  = 30 * time.Second
)

const authDisabledText = "Accounts are disabled. Set DATABASE_URL to enable /login and /register."

var errChatRateLimited = errors.New("chat rate limit exceeded")

type role int

const (
	roleUser role = iota
	roleAssistant
	roleSystem
	roleError
)

type entry struct {
	role role
	text string
}

type tickMsg time.Time

type authAction int

const (
	actionNone authAction = iota
	actionRegister
	actionLogin
	actionLogout
	actionStatus
)

type authOutcome struct {
	resp *auth.AuthResponse
	user *user.User
}

// Deps are the collaborators of the chat screen. Auth is nil when no
// database is configured; Limiter may be nil.
type Deps struct {
	Config  *config.Config
	Auth    *auth.Service
	Chat    chat.Completer
	Limiter *ratelimit.Limiter
	Pool    *dispatch.Pool
}

// Model is the foreground loop. It never blocks: network and hashing work
// goes through the mailboxes and is collected on each tick.
type Model struct {
	cfg     *config.Config
	auth    *auth.Service
	state   *auth.State
	chat    chat.Completer
	limiter *ratelimit.Limiter
	window  *chat.Window
	client  auth.ClientInfo

	chatBox     *dispatch.Mailbox[string]
	authBox     *dispatch.Mailbox[authOutcome]
	authPending authAction

	entries  []entry
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   styles

	width    int
	height   int
	ready    bool
	quitting bool
}

func New(deps Deps) Model {
	cfg := deps.Config

	ti := textinput.New()
	ti.Placeholder = "Describe a quantum computation, or type /help"
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	st := defaultStyles()
	sp.Style = st.spinner

	m := Model{
		cfg:     cfg,
		auth:    deps.Auth,
		state:   auth.NewState(),
		chat:    deps.Chat,
		limiter: deps.Limiter,
		window:  chat.NewWindow(cfg.Chat.SystemPrompt, cfg.Chat.MaxHistory),
		client: auth.ClientInfo{
			DeviceInfo: fmt.Sprintf("qhub-cli/%s (%s/%s)",
				cfg.App.Version, runtime.GOOS, runtime.GOARCH),
		},
		chatBox: dispatch.NewMailbox[string](deps.Pool, "chat"),
		authBox: dispatch.NewMailbox[authOutcome](deps.Pool, "auth"),
		input:   ti,
		spinner: sp,
		styles:  st,
	}

	m.addEntry(roleSystem, welcomeText)

	switch {
	case deps.Auth == nil:
		m.addEntry(roleSystem, "No database configured; chatting without an account.")
	case cfg.JWT.UsingDevSecret():
		m.addEntry(roleError,
			"Warning: JWT_SECRET is not set. Sessions are signed with the development secret.")
	}
	if cfg.Chat.APIKey == "" {
		m.addEntry(roleError, chat.FriendlyError(chat.ErrMissingAPIKey))
	}

	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.TUI.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlQ:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tickMsg:
		m.poll()
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return m, nil
	}

	cmd, isCommand := parseCommand(value)
	if !isCommand {
		m.sendChat(value)
		return m, nil
	}

	m.input.Reset()

	switch cmd.kind {
	case cmdQuit:
		m.quitting = true
		return m, tea.Quit
	case cmdHelp:
		m.addEntry(roleSystem, helpText)
	case cmdClear:
		m.entries = nil
		m.window.Reset()
		m.addEntry(roleSystem, "Chat cleared.")
	case cmdUpgrade:
		m.addEntry(roleSystem, fmt.Sprintf(
			"Plan upgrades are not available from the terminal yet. Current tier: %s.",
			m.tier()))
	case cmdStatus:
		m.status()
	case cmdLogin:
		m.login(cmd.args)
	case cmdRegister:
		m.register(cmd.args)
	case cmdLogout:
		m.logout()
	default:
		m.addEntry(roleError, fmt.Sprintf(
			"Unknown command: /%s. Type /help for available commands.", cmd.name))
	}

	m.refresh()
	return m, nil
}

// sendChat leaves the input untouched while a reply is outstanding.
func (m *Model) sendChat(text string) {
	if m.chatBox.Busy() {
		return
	}

	if m.cfg.Chat.RequireAuth && m.auth != nil && m.state.Phase() != auth.Authenticated {
		m.input.Reset()
		m.addEntry(roleError, "Please /login or /register before chatting.")
		m.refresh()
		return
	}

	m.input.Reset()
	m.addEntry(roleUser, text)
	m.window.Append(chat.Message{Role: chat.RoleUser, Content: text})

	messages := m.window.Messages()
	key, tier := m.rateKey()
	limiter := m.limiter
	completer := m.chat

	err := m.chatBox.Dispatch(func(ctx context.Context) (string, error) {
		if limiter != nil {
			res, _ := limiter.AllowTier(ctx, "chat:"+key, tier)
			if res.Allowed == 0 {
				return "", errChatRateLimited
			}
		}
		return completer.Complete(ctx, messages)
	})
	if err != nil {
		m.addEntry(roleError, "Could not send message: "+err.Error())
	}

	m.refresh()
}

func (m *Model) login(args []string) {
	if len(args) != 2 {
		m.addEntry(roleError, "Usage: /login <email> <password>")
		return
	}

	req := auth.LoginRequest{Email: args[0], Password: args[1]}
	svc, client := m.auth, m.client

	m.startAuth(actionLogin, "Logging in as "+args[0]+"...",
		func(ctx context.Context) (authOutcome, error) {
			resp, err := svc.Login(ctx, req, client)
			return authOutcome{resp: resp}, err
		})
}

func (m *Model) register(args []string) {
	if len(args) < 2 || len(args) > 3 {
		m.addEntry(roleError, "Usage: /register <email> <password> [username]")
		return
	}

	req := auth.RegisterRequest{Email: args[0], Password: args[1]}
	if len(args) == 3 {
		req.Username = args[2]
	}
	svc, client := m.auth, m.client

	m.startAuth(actionRegister, "Creating account for "+args[0]+"...",
		func(ctx context.Context) (authOutcome, error) {
			resp, err := svc.Register(ctx, req, client)
			return authOutcome{resp: resp}, err
		})
}

func (m *Model) startAuth(
	action authAction,
	notice string,
	op func(ctx context.Context) (authOutcome, error),
) {
	if m.auth == nil {
		m.addEntry(roleError, authDisabledText)
		return
	}
	if m.authBox.Busy() {
		m.addEntry(roleSystem, auth.UserMessage(auth.ErrAuthBusy))
		return
	}
	if err := m.state.Begin(); err != nil {
		m.addEntry(roleSystem, auth.UserMessage(err))
		return
	}

	if err := m.dispatchAuth(action, op); err != nil {
		m.state.Fail()
		m.addEntry(roleError, "Could not start sign-in: "+err.Error())
		return
	}
	m.addEntry(roleSystem, notice)
}

func (m *Model) logout() {
	if m.auth == nil {
		m.addEntry(roleError, authDisabledText)
		return
	}
	if m.state.Phase() != auth.Authenticated {
		m.addEntry(roleSystem, "Not logged in.")
		return
	}
	if m.authBox.Busy() {
		m.addEntry(roleSystem, auth.UserMessage(auth.ErrAuthBusy))
		return
	}

	token := m.state.Token()
	svc := m.auth
	m.state.Reset()

	err := m.dispatchAuth(actionLogout, func(ctx context.Context) (authOutcome, error) {
		return authOutcome{}, svc.Logout(ctx, token)
	})
	if err != nil {
		m.addEntry(roleError, "Logged out locally; the server session could not be closed.")
	}
}

func (m *Model) status() {
	if m.state.Phase() != auth.Authenticated {
		if m.auth == nil {
			m.addEntry(roleSystem, authDisabledText)
			return
		}
		m.addEntry(roleSystem, "Not logged in. Use /login or /register to get started.")
		return
	}
	if m.authBox.Busy() {
		m.addEntry(roleSystem, auth.UserMessage(auth.ErrAuthBusy))
		return
	}

	token := m.state.Token()
	svc := m.auth

	err := m.dispatchAuth(actionStatus, func(ctx context.Context) (authOutcome, error) {
		u, err := svc.VerifySession(ctx, token)
		return authOutcome{user: u}, err
	})
	if err != nil {
		m.addEntry(roleError, "Could not check status: "+err.Error())
	}
}

func (m *Model) dispatchAuth(
	action authAction,
	op func(ctx context.Context) (authOutcome, error),
) error {
	err := m.authBox.Dispatch(func(ctx context.Context) (authOutcome, error) {
		ctx, cancel := context.WithTimeout(ctx, authTimeout)
		defer cancel()
		return op(ctx)
	})
	if err != nil {
		return err
	}
	m.authPending = action
	return nil
}

// poll collects finished background results. It runs once per tick.
func (m *Model) poll() {
	changed := false

	if res, ok := m.chatBox.Poll(); ok {
		changed = true
		if res.Err != nil {
			slog.Warn("chat request failed", "error", res.Err)
			m.addEntry(roleError, chat.FriendlyError(res.Err))
		} else {
			m.window.Append(chat.Message{Role: chat.RoleAssistant, Content: res.Value})
			m.addEntry(roleAssistant, res.Value)
		}
	}

	if res, ok := m.authBox.Poll(); ok {
		changed = true
		m.handleAuthResult(res)
	}

	if changed {
		m.refresh()
	}
}

func (m *Model) handleAuthResult(res dispatch.Result[authOutcome]) {
	action := m.authPending
	m.authPending = actionNone

	switch action {
	case actionRegister, actionLogin:
		if res.Err != nil {
			m.state.Fail()
			m.addEntry(roleError, auth.UserMessage(res.Err))
			return
		}
		m.state.Succeed(res.Value.resp)

		u := res.Value.resp.User
		verb := "Logged in"
		if action == actionRegister {
			verb = "Account created. Logged in"
		}
		m.addEntry(roleSystem, fmt.Sprintf("%s as %s (%s tier).", verb, u.Email, u.Tier))

	case actionLogout:
		if res.Err != nil {
			m.addEntry(roleError, auth.UserMessage(res.Err))
			return
		}
		m.addEntry(roleSystem, "Logged out.")

	case actionStatus:
		if res.Err != nil {
			if errors.Is(res.Err, auth.ErrInvalidSession) ||
				errors.Is(res.Err, auth.ErrAccountDeactivated) {
				m.state.Reset()
			}
			m.addEntry(roleError, auth.UserMessage(res.Err))
			return
		}
		m.state.Refresh(res.Value.user)
		m.addEntry(roleSystem, m.statusText())
	}
}

func (m *Model) statusText() string {
	id := m.state.Identity()
	if id == nil {
		return "Not logged in. Use /login or /register to get started."
	}
	return fmt.Sprintf("Logged in as: %s\nTier: %s\nSession expires: %s",
		id.Email, id.Tier, id.ExpiresAt.Local().Format(time.RFC1123))
}

func (m *Model) rateKey() (string, string) {
	if id := m.state.Identity(); id != nil {
		return id.UserID, id.Tier
	}
	return "anonymous", user.TierFree
}

func (m *Model) tier() string {
	_, tier := m.rateKey()
	return tier
}

func (m *Model) addEntry(r role, text string) {
	m.entries = append(m.entries, entry{role: r, text: text})
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := max(height-chromeHeight, 1)
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.Width = max(width-4, 10)

	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()
}

func (m *Model) renderEntries() string {
	wrap := lipgloss.NewStyle().Width(max(m.width-2, 10))

	blocks := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		var block string
		switch e.role {
		case roleUser:
			block = m.styles.user.Render("You") + "\n" + e.text
		case roleAssistant:
			block = m.styles.assistant.Render("QHub") + "\n" + e.text
		case roleError:
			block = m.styles.errorLine.Render(e.text)
		default:
			block = m.styles.system.Render(e.text)
		}
		blocks = append(blocks, wrap.Render(block))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) View() string {
	if m.quitting {
		return "Goodbye from QHub.\n"
	}
	if !m.ready {
		return "Initializing..."
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.header.Render(m.cfg.App.Name),
		m.styles.status.Render(m.statusLine()),
	)

	activity := ""
	switch {
	case m.chatBox.Busy():
		activity = m.spinner.View() + " Thinking..."
	case m.authBox.Busy():
		activity = m.spinner.View() + " Talking to the account service..."
	}

	footer := m.styles.footer.Render("Enter send · /help commands · PgUp/PgDn scroll · Ctrl+C quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		activity,
		m.input.View(),
		footer,
	)
}

func (m Model) statusLine() string {
	switch m.state.Phase() {
	case auth.Authenticating:
		return "signing in..."
	case auth.Authenticated:
		if id := m.state.Identity(); id != nil {
			return fmt.Sprintf("%s · %s", id.Email, id.Tier)
		}
	}
	if m.auth == nil {
		return "guest"
	}
	return "not logged in"
}
