package matte

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os/exec"
	"strings"

	imgutil "github.com/gogpu/animkit/internal/image"
)

// ErrNoCommand is returned by a Command with no program configured.
var ErrNoCommand = errors.New("matte: no command configured")

// Command runs an external matting program. The frame is written to the
// program's stdin as PNG and the matted image is read back from stdout,
// e.g. Command{Args: []string{"rembg", "i"}}.
type Command struct {
	Args []string
	Env  []string
}

// Matte implements Matter.
func (c Command) Matte(ctx context.Context, img *image.NRGBA) (*image.NRGBA, error) {
	if len(c.Args) == 0 {
		return nil, ErrNoCommand
	}

	in, err := imgutil.EncodeToBytes(img)
	if err != nil {
		return nil, fmt.Errorf("matte: encode input: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(in)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("matte: %s: %w: %s", c.Args[0], err, msg)
		}
		return nil, fmt.Errorf("matte: %s: %w", c.Args[0], err)
	}
	if stderr.Len() > 0 {
		slogger().Debug("matte: command stderr", "cmd", c.Args[0], "output", strings.TrimSpace(stderr.String()))
	}

	out, err := imgutil.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("matte: %s: decode output: %w", c.Args[0], err)
	}
	return out, nil
}
