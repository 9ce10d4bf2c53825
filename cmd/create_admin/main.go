package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/term"

	"legal-companion/internal/config"
	"legal-companion/internal/domain"
	"legal-companion/internal/repository"
	"legal-companion/internal/service"
)

// cliActor firma los logs de auditoria de las altas hechas desde consola.
var cliActor = domain.User{Username: "create_admin"}

func main() {
	username := flag.String("username", "", "admin username")
	emailAddr := flag.String("email", "", "admin email (defaults to <username>@admin.local)")
	flag.Parse()

	if strings.TrimSpace(*username) == "" {
		log.Fatal("-username is required")
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	password, err := readPassword()
	if err != nil {
		log.Fatalf("leer password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	st, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	adminSvc := service.NewAdminService(logger, st.Users, st.Searches, st.Pinger)

	var user domain.User
	if strings.TrimSpace(*emailAddr) == "" {
		user, err = adminSvc.CreateAdmin(ctx, cliActor, *username, password)
	} else {
		user, err = adminSvc.CreateUser(ctx, cliActor, service.CreateUserInput{
			Username: *username,
			Email:    *emailAddr,
			Password: password,
			IsAdmin:  true,
		})
	}
	if err != nil {
		var inputErr *service.InputError
		switch {
		case errors.As(err, &inputErr):
			log.Fatalf("datos invalidos: %s", inputErr.Msg)
		case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrConflict):
			log.Fatalf("ya existe un usuario con ese username o email")
		default:
			log.Fatalf("crear admin: %v", err)
		}
	}

	fmt.Printf("Admin '%s' creado (id=%s, email=%s)\n", user.Username, user.ID, user.Email)
}

// readPassword usa ADMIN_PASSWORD si esta definida; si no, pide la clave dos
// veces sin eco cuando stdin es una terminal.
func readPassword() (string, error) {
	if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
		return pw, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return nonEmpty(strings.TrimRight(line, "\r\n"))
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return nonEmpty(string(first))
}

func nonEmpty(pw string) (string, error) {
	if pw == "" {
		return "", errors.New("password is required")
	}
	return pw, nil
}
