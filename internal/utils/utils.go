package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/ochronus/gogett/gett"
)

const configTemplate = `# Ge.tt credentials. Every value can also be set with an environment variable
# (GETT_API_KEY, GETT_EMAIL, GETT_PASSWORD, GETT_BASE_URL) or in a .env file.
[gett]
# Required. API key of your Ge.tt application
api_key = "{{API_KEY}}"
# Required. Account email
email = "{{EMAIL}}"
# Optional. Asked for on the terminal when empty
password = ""
# Optional API root, default "{{BASE_URL}}"
base_url = "{{BASE_URL}}"

# Optional log level, default "info"
loglevel = "info"

# Optional HTTP timeout in secs, default 30
timeout = 30

# Optional directory that "download" saves shares into, default "."
download_directory = "."

# Optional number of parallel downloads, default 4
download_workers = 4
`

// Prompter reads answers from the user.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
}

// NewPrompter creates a Prompter reading from in. Passwords are read without
// echo when in is a terminal.
func NewPrompter(in *os.File, out io.Writer) *Prompter {
	fd := int(in.Fd())
	return &Prompter{
		in:     bufio.NewReader(in),
		out:    out,
		fd:     fd,
		isTerm: term.IsTerminal(fd),
	}
}

// NewReaderPrompter creates a Prompter for non-terminal input such as tests or pipes.
func NewReaderPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints question and returns the trimmed answer line.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Password asks for a secret, hiding the input on terminals.
func (p *Prompter) Password(question string) (string, error) {
	if !p.isTerm {
		return p.Ask(question)
	}

	fmt.Fprint(p.out, question)
	password, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

// RenderConfig fills the configuration template.
func RenderConfig(apiKey, email string) string {
	return strings.NewReplacer(
		"{{API_KEY}}", apiKey,
		"{{EMAIL}}", email,
		"{{BASE_URL}}", gett.DefaultBaseURL,
	).Replace(configTemplate)
}

// GenerateConfig asks for the API key and email and writes a configuration file
func GenerateConfig(configPath string, p *Prompter) error {
	fmt.Fprintf(p.out, "Generating config %s\n", configPath)

	apiKey, err := p.Ask("Ge.tt API key: ")
	if err != nil {
		return fmt.Errorf("failed to read api key: %w", err)
	}
	email, err := p.Ask("Ge.tt email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	config := RenderConfig(apiKey, email)

	// Check if config file already exists and back it up
	if _, err := os.Stat(configPath); err == nil {
		backupPath := configPath + ".bak"
		fmt.Fprintf(p.out, "Backing up config %s\n", configPath)
		if err := os.Rename(configPath, backupPath); err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file may end up holding a password, keep it private.
	fmt.Fprintf(p.out, "Writing %s\n", configPath)
	if err := os.WriteFile(configPath, []byte(config), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// HumanSize formats a byte count with binary units
func HumanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
