package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/compose-network/random-winner-game/internal/infra/docker"
)

const inputFileName = "input.json"

var versionPattern = regexp.MustCompile(`Version:\s*(\d+\.\d+\.\d+\+commit\.[0-9a-f]+)`)

// DockerSolc runs the official solc image. The standard JSON input is copied
// into the container and the output is read from stdout.
type DockerSolc struct {
	docker *docker.Client
	image  string
}

func NewDockerSolc(client *docker.Client, image, version string) *DockerSolc {
	return &DockerSolc{docker: client, image: image + ":" + version}
}

func (s *DockerSolc) LongVersion(ctx context.Context) (string, error) {
	if err := s.docker.EnsureImage(ctx, s.image); err != nil {
		return "", err
	}

	out, err := s.docker.Run(ctx, docker.RunOptions{Image: s.image, Cmd: []string{"--version"}})
	if err != nil {
		return "", err
	}

	return parseVersion(out.Stdout)
}

func (s *DockerSolc) CompileStandardJSON(ctx context.Context, input []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "rwg-solc-")
	if err != nil {
		return nil, fmt.Errorf("failed to create input directory: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, inputFileName), input, 0644); err != nil {
		return nil, fmt.Errorf("failed to write compiler input: %w", err)
	}

	out, err := s.docker.Run(ctx, docker.RunOptions{
		Image: s.image,
		Cmd:   []string{"--standard-json", "/" + inputFileName},
		Files: map[string]string{dir: "/"},
	})
	if err != nil {
		return nil, err
	}

	return []byte(out.Stdout), nil
}

func parseVersion(output string) (string, error) {
	match := versionPattern.FindStringSubmatch(output)
	if match == nil {
		return "", fmt.Errorf("unexpected solc --version output: %q", output)
	}
	return match[1], nil
}
