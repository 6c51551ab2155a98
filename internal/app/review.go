package app

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/neovim/go-client/nvim"

	"docsync/internal/ui"
)

// Review loads each generated target's updated document into Neovim
// buffers, unsaved. Patches stay advisory; this just puts the proposed
// content in front of a human.
func (a *App) Review() error {
	if len(a.reviewDocs) == 0 {
		ui.Info("No generated documents to review.")
		return nil
	}

	manager, err := newReviewManager()
	if err != nil {
		return err
	}
	defer manager.Close()

	ui.Header("--- Loading %d document(s) into Neovim ---", len(a.reviewDocs))
	for _, doc := range a.reviewDocs {
		if manager.loadBuffer(doc.Path, doc.Content) {
			ui.Path("- %s", doc.Path)
		} else {
			ui.Warning("Could not load %s", doc.Path)
		}
	}
	ui.Warning("\nBuffers are not saved. Review and write them yourself.")
	return nil
}

// reviewManager handles the connection to a Neovim instance.
type reviewManager struct {
	nvim          *nvim.Nvim
	isSelfStarted bool
	cmd           *exec.Cmd
	socketPath    string
}

// newReviewManager connects to a running instance or starts a temporary
// headless one.
func newReviewManager() (*reviewManager, error) {
	if addr := os.Getenv("NVIM_LISTEN_ADDRESS"); addr != "" {
		v, err := nvim.Dial(addr)
		if err == nil {
			return &reviewManager{nvim: v}, nil
		}
	}

	tmpDir, err := os.MkdirTemp("", "docsync-nvim-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir for nvim: %w", err)
	}
	socketPath := filepath.Join(tmpDir, "nvim.sock")

	cmd := exec.Command("nvim", "--headless", "--clean", "--listen", socketPath)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start headless nvim: %w. Is 'nvim' in your PATH?", err)
	}

	// Wait for the socket file to appear.
	for i := 0; i < 20; i++ {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	v, err := nvim.Dial(socketPath)
	if err != nil {
		cmd.Process.Kill()
		return nil, fmt.Errorf("failed to connect to headless nvim: %w", err)
	}

	m := &reviewManager{
		nvim:          v,
		isSelfStarted: true,
		cmd:           cmd,
		socketPath:    socketPath,
	}
	b := m.nvim.NewBatch()
	b.Command("set noswapfile")
	_ = b.Execute()
	return m, nil
}

// Close disconnects from Neovim and cleans up if it was self-started.
func (m *reviewManager) Close() {
	if m.nvim != nil {
		m.nvim.Close()
	}
	if m.isSelfStarted && m.cmd != nil && m.cmd.Process != nil {
		if err := m.cmd.Process.Kill(); err == nil {
			m.cmd.Wait()
			os.RemoveAll(filepath.Dir(m.socketPath))
		}
	}
}

// loadBuffer replaces the buffer for filePath with content, unsaved.
func (m *reviewManager) loadBuffer(filePath, content string) bool {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return false
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	byteContent := make([][]byte, len(lines))
	for i, s := range lines {
		byteContent[i] = []byte(s)
	}

	b := m.nvim.NewBatch()
	b.Command(fmt.Sprintf("edit %s", absPath))
	b.SetBufferLines(0, 0, -1, true, byteContent)

	return b.Execute() == nil
}
