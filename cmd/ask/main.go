package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"jotha-be/internal/bootstrap"
	"jotha-be/internal/config"
	"jotha-be/internal/dto"
	"jotha-be/pkg/database"

	"github.com/fatih/color"
)

var (
	courseName = flag.String("course", "", "Course to declare before the first question")
	showSource = flag.Bool("sources", false, "Print the passages behind each answer")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.LogLevelFor(true))
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	container, err := bootstrap.NewContainer(ctx, db, cfg)
	if err != nil {
		color.Red("Failed to bootstrap: %v", err)
		os.Exit(1)
	}
	defer container.Close()

	chat := container.ChatService
	session, err := chat.CreateSession(ctx)
	if err != nil {
		color.Red("Failed to create session: %v", err)
		os.Exit(1)
	}

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Println(boldGreen("🎓 JOTHA - Assistente de Estágio"))
	fmt.Printf("Índices carregados: %s\n", boldCyan(strings.Join(container.Registry.Loaded(), ", ")))
	fmt.Println("Digite sua pergunta. Use '/curso <nome>' para informar o curso e 'sair' para encerrar.")
	fmt.Println()

	if *courseName != "" {
		declare(ctx, chat, session.SessionId, *courseName)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("Você: "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())

		switch {
		case input == "":
			continue
		case strings.EqualFold(input, "sair") || strings.EqualFold(input, "exit"):
			return
		case strings.HasPrefix(input, "/curso "):
			declare(ctx, chat, session.SessionId, strings.TrimPrefix(input, "/curso "))
			continue
		}

		res, err := chat.Ask(ctx, &dto.AskRequest{SessionId: session.SessionId, Question: input})
		if err != nil {
			color.Red("Erro: %v", err)
			continue
		}

		fmt.Print(boldCyan("JOTHA: "))
		fmt.Println(res.Answer)
		if *showSource {
			for _, src := range res.Sources {
				color.HiBlack("  [%s/%s %.3f] %s", src.Source, src.Course, src.Score, src.Excerpt)
			}
		}
		fmt.Println()
	}
}

type courseDeclarer interface {
	DeclareCourse(ctx context.Context, req *dto.DeclareCourseRequest) (*dto.DeclareCourseResponse, error)
}

func declare(ctx context.Context, chat courseDeclarer, sessionID, name string) {
	res, err := chat.DeclareCourse(ctx, &dto.DeclareCourseRequest{SessionId: sessionID, Course: name})
	if err != nil {
		color.Red("Erro: %v", err)
		return
	}
	color.Green("Curso registrado: %s (%s)", res.CourseLabel, res.Course)
	if res.Suggestion != nil {
		color.Yellow("Você quis dizer %s?", res.Suggestion.Label)
	}
}
