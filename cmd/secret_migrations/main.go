package main

import (
	"context"
	"flag"
	"log"
	"strconv"

	"github.com/alialsharqawi/bank-backoffice/internal/bank"
	"github.com/alialsharqawi/bank-backoffice/internal/secret"
	"github.com/alialsharqawi/bank-backoffice/internal/secret_migrations"
)

// Re-encrypts the secret field of the admin and client files from one
// scheme to another, for example:
//
//	secret_migrations -from caesar -to aesgcm -passphrase s3cret
func main() {
	fromScheme := flag.String("from", "caesar", "current cipher scheme")
	fromShift := flag.Int("from-shift", secret.DefaultCaesarShift, "shift of the current caesar cipher")
	toScheme := flag.String("to", "", "target cipher scheme")
	toShift := flag.Int("to-shift", secret.DefaultCaesarShift, "shift of the target caesar cipher")
	passphrase := flag.String("passphrase", "", "passphrase for the aesgcm side")
	flag.Parse()

	if *toScheme == "" {
		log.Fatal("-to is not set")
	}

	appConfig, err := bank.LoadConfig()

	if err != nil {
		log.Fatal(err)
	}

	from, err := secret.FromConfig(*fromScheme, *fromShift, *passphrase)

	if err != nil {
		log.Fatal(err)
	}

	to, err := secret.FromConfig(*toScheme, *toShift, *passphrase)

	if err != nil {
		log.Fatal(err)
	}

	paths := []string{appConfig.AdminsFile, appConfig.ClientsFile}

	counts, err := secret_migrations.Migrate(context.Background(), paths, from, to)

	if err != nil {
		log.Fatal(err)
	}

	for path, n := range counts {
		log.Println(path + ": " + strconv.Itoa(n) + " records migrated")
	}
}
