package main

import (
	"flag"
	"fmt"
	"log"

	"institute-admin/app/config"
	"institute-admin/app/database"
	"institute-admin/app/models"
	"institute-admin/app/routes/auth"
)

func main() {
	email := flag.String("email", "", "operator email")
	password := flag.String("password", "", "initial password")
	firstName := flag.String("first", "Admin", "first name")
	lastName := flag.String("last", "User", "last name")
	role := flag.String("role", "bursar", "role to attach")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("Usage: adduser -email <email> -password <password> [-first name] [-last name] [-role role]")
	}

	config.InitDB()
	db := config.GetDB()
	defer db.Close()

	hashed, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	user := &models.User{
		FirstName: *firstName,
		LastName:  *lastName,
		Email:     *email,
		Password:  hashed,
	}

	if err := database.CreateUser(db, user, *role); err != nil {
		log.Fatal("Error creating user:", err)
	}

	fmt.Printf("User created successfully: %s %s (%s) with role %s\n",
		user.FirstName, user.LastName, user.Email, *role)
}
