package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/moby/go-archive"
)

type RunOptions struct {
	Image   string
	Cmd     []string
	Env     []string
	WorkDir string
	User    string
	// Files maps a host directory onto a container directory. The content is
	// copied into the container before it starts, so it works against remote
	// daemons where bind mounts would not.
	Files      map[string]string
	StreamLogs bool
}

// RunResult carries the captured output of a finished container.
type RunResult struct {
	Stdout string
	Stderr string
}

// Run runs a Docker container to completion and returns its output. The
// container is always removed afterwards.
func (c *Client) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	config := &container.Config{
		Image:        opts.Image,
		Cmd:          opts.Cmd,
		Env:          opts.Env,
		WorkingDir:   opts.WorkDir,
		User:         opts.User,
		AttachStdout: true,
		AttachStderr: true,
	}

	resp, err := c.cli.ContainerCreate(ctx, config, &container.HostConfig{}, nil, nil, "")
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to create container: %w", err)
	}

	containerID := resp.ID
	defer func() {
		_ = c.cli.ContainerRemove(context.WithoutCancel(ctx), containerID, container.RemoveOptions{Force: true})
	}()

	for hostDir, containerDir := range opts.Files {
		if err := c.copyDir(ctx, containerID, hostDir, containerDir); err != nil {
			return RunResult{}, err
		}
	}

	attachResp, err := c.cli.ContainerAttach(ctx, containerID, container.AttachOptions{
		Stream: true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to attach to container: %w", err)
	}
	defer attachResp.Close()

	var stdout, stderr bytes.Buffer
	copied := make(chan struct{})
	go func() {
		defer close(copied)
		var outWriter, errWriter io.Writer = &stdout, &stderr
		if opts.StreamLogs {
			outWriter = io.MultiWriter(os.Stdout, &stdout)
			errWriter = io.MultiWriter(os.Stderr, &stderr)
		}
		_, _ = stdcopy.StdCopy(outWriter, errWriter, attachResp.Reader)
	}()

	if err := c.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return RunResult{}, fmt.Errorf("failed to start container: %w", err)
	}

	statusCh, errCh := c.cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	var exitCode int64
	select {
	case err := <-errCh:
		if err != nil {
			return RunResult{}, fmt.Errorf("error waiting for container: %w", err)
		}
	case status := <-statusCh:
		exitCode = status.StatusCode
	}

	select {
	case <-copied:
	case <-ctx.Done():
		return RunResult{}, ctx.Err()
	}

	result := RunResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if exitCode != 0 {
		if output := result.Stderr + result.Stdout; output != "" {
			return result, fmt.Errorf("container exited with code %d: %s", exitCode, output)
		}
		return result, fmt.Errorf("container exited with code %d", exitCode)
	}

	return result, nil
}

func (c *Client) copyDir(ctx context.Context, containerID, hostDir, containerDir string) error {
	content, err := TarDir(hostDir)
	if err != nil {
		return err
	}
	defer content.Close()

	if err := c.cli.CopyToContainer(ctx, containerID, containerDir, content, container.CopyToContainerOptions{}); err != nil {
		return fmt.Errorf("failed to copy %s into container at %s: %w", hostDir, containerDir, err)
	}

	return nil
}

// TarDir packs the content of dir (not the directory itself) into a tar stream.
func TarDir(dir string) (io.ReadCloser, error) {
	content, err := archive.TarWithOptions(dir, &archive.TarOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to archive %s: %w", dir, err)
	}

	return content, nil
}
