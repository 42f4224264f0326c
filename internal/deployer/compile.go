package deployer

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/deployer/artifacts"
	"github.com/compose-network/random-winner-game/internal/deployer/compiler"
	"github.com/compose-network/random-winner-game/internal/infra/docker"
	"github.com/compose-network/random-winner-game/internal/infra/filesystem"
	"github.com/compose-network/random-winner-game/internal/infra/git"
	"github.com/spf13/cobra"
)

const repositoriesDirName = "repositories"

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile the Solidity sources with solc in Docker",
	Long:  "Compiles the contracts under the sources directory and writes Hardhat style artifacts and build info",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configs.Values
		slog.Info("running contract compilation command")

		if err := cfg.ValidateCompile(); err != nil {
			return err
		}

		ctx := cmd.Context()
		projectDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}

		if repo := cfg.Compiler.Repository; repo.URL != "" {
			slog.With("url", repo.URL).With("branch", repo.Branch).Info("cloning sources repository")
			projectDir, err = git.NewCloner().Clone(ctx, filepath.Join(cfg.Paths.Cache, repositoriesDirName), git.Repository{
				Name: repositoryName(repo.URL),
				URL:  repo.URL,
				Ref:  repo.Branch,
			})
			if err != nil {
				return fmt.Errorf("failed to clone repository: '%w'", err)
			}
		}

		dockerClient, err := docker.New()
		if err != nil {
			return err
		}
		defer dockerClient.Close()

		result, err := compiler.NewCompiler(
			cfg.Compiler,
			projectDir,
			compiler.NewDockerSolc(dockerClient, cfg.Compiler.Image, cfg.Compiler.Version),
			artifacts.NewStore(cfg.Paths.Artifacts, filesystem.NewJSON()),
		).Compile(ctx)
		if err != nil {
			return fmt.Errorf("contract compilation failed: %w", err)
		}

		for _, name := range result.Contracts {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		slog.With("build_info", result.BuildInfoID).Info("contract compilation completed successfully")

		return nil
	},
}

// repositoryName derives a checkout directory name from a clone URL.
func repositoryName(url string) string {
	name := strings.TrimSuffix(path.Base(strings.TrimRight(url, "/")), ".git")
	if name == "" || name == "." || name == "/" {
		return "sources"
	}
	return name
}
