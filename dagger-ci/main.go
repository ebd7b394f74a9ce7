// Сборка и публикация образа сервиса Rédacteur.
//
// Образ содержит бинарник cmd/redacteur и schema.sql для запуска с флагом --atlas.

package main

import (
	"context"
	"dagger/redacteur/internal/dagger"
	"fmt"
)

type Redacteur struct{}

func (m *Redacteur) GoBuildEnv(source *dagger.Directory) *dagger.Container {
	goCache := dag.CacheVolume("go")
	return dag.Container().
		From("golang:alpine").
		WithDirectory("/src", source).
		WithWorkdir("/src").
		WithEnvVariable("GOOS", "linux").
		WithEnvVariable("CGO_ENABLED", "0").
		WithMountedCache("/go/pkg/mod", goCache).
		WithExec([]string{"go", "mod", "tidy"})
}

// Test прогоняет тесты модуля. SQLite работает без cgo, внешние сервисы не нужны.
func (m *Redacteur) Test(ctx context.Context, source *dagger.Directory) (string, error) {
	return m.GoBuildEnv(source).
		WithExec([]string{"go", "test", "./..."}).
		Stdout(ctx)
}

func (m *Redacteur) BackEnv(platform dagger.Platform, appBin *dagger.File, schema *dagger.File) *dagger.Container {
	return dag.Container(dagger.ContainerOpts{
		Platform: platform,
	}).
		From("alpine").
		WithEnvVariable("TZ", "Europe/Paris").
		WithExec([]string{"apk", "add", "--no-cache", "tzdata", "curl"}).
		WithWorkdir("/app").
		WithFile("/app/app", appBin).
		WithFile("/app/schema.sql", schema).
		WithEnvVariable("FILES_PATH", "/app/files").
		WithEntrypoint([]string{"/app/app"})
}

func (m *Redacteur) Build(version string, source *dagger.Directory) []*dagger.Container {
	buildMatrix := []struct {
		Arch     string
		BinName  string
		Platform dagger.Platform
	}{
		{
			Arch:     "amd64",
			BinName:  "/build/redacteur-linux",
			Platform: dagger.Platform("linux/amd64"),
		},
		{
			Arch:     "arm64",
			BinName:  "/build/redacteur-linux-arm64",
			Platform: dagger.Platform("linux/arm64/v8"),
		},
	}

	var images []*dagger.Container
	for _, buildParam := range buildMatrix {
		builder := m.GoBuildEnv(source).
			WithEnvVariable("GOARCH", buildParam.Arch).
			WithExec([]string{"go", "build", "-o", buildParam.BinName, "-ldflags", fmt.Sprintf("-s -w -X main.version=%s", version), "./cmd/redacteur"})

		image := m.BackEnv(
			buildParam.Platform,
			builder.File(buildParam.BinName),
			builder.File("/src/cmd/redacteur/schema.sql"),
		).
			WithLabel("org.opencontainers.image.source", "https://github.com/aisa-it/redacteur").
			WithAnnotation("org.opencontainers.image.source", "https://github.com/aisa-it/redacteur")
		images = append(images, image)
	}
	return images
}

func (m *Redacteur) Publish(
	ctx context.Context,
	images []*dagger.Container,
	registrySecret *dagger.Secret,
	registryUser string,
	imageName string,
) (string, error) {
	return dag.Container().
		WithRegistryAuth("ghcr.io", registryUser, registrySecret).
		Publish(ctx, "ghcr.io/"+imageName, dagger.ContainerPublishOpts{PlatformVariants: images})
}

func (m *Redacteur) Export(
	ctx context.Context,
	images []*dagger.Container,
	imageName string,
) (string, error) {
	return dag.Container().
		Export(ctx, imageName, dagger.ContainerExportOpts{PlatformVariants: images})
}

func (m *Redacteur) BuildLocal(ctx context.Context, name string, source *dagger.Directory) (string, error) {
	return m.Export(ctx, m.Build("v0.1.0", source), name)
}

func (m *Redacteur) BuildApp(ctx context.Context, version string, source *dagger.Directory,
	registrySecret *dagger.Secret,
	registryUser string,
	imageName string,
) error {
	back := m.Build(version, source)

	for _, tag := range []string{version, "latest"} {
		ref, err := m.Publish(ctx, back, registrySecret, registryUser, fmt.Sprintf("%s:%s", imageName, tag))
		if err != nil {
			return err
		}
		fmt.Println(ref)
	}
	return nil
}
