// Команда issue-token выпускает ID-токен для локального запуска API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/magabrotheeeer/restaurant-radio/internal/config"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/jwt"
)

func main() {
	uid := flag.String("uid", "", "user id (sub claim)")
	email := flag.String("email", "", "email claim")
	flag.Parse()

	if *uid == "" {
		fmt.Fprintln(os.Stderr, "uid is required")
		os.Exit(2)
	}

	cfg := config.MustLoad()
	token, err := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL, cfg.Issuer).GenerateToken(*uid, *email)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
