package main

import (
	"time"

	"github.com/google/uuid"

	"contactbook/internal/contacts"
	"contactbook/internal/notes"
)

// seedContacts returns demo contacts for local development.
func seedContacts() []contacts.Contact {
	now := time.Now().UTC()
	date := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	return []contacts.Contact{
		{
			ID:            uuid.NewString(),
			FirstName:     "Happiness",
			LastName:      "Ncube",
			Email:         "happiness.ncube@example.com",
			FavoriteColor: "Blue",
			Birthday:      date(1996, time.March, 14),
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            uuid.NewString(),
			FirstName:     "Ana",
			LastName:      "Lima",
			Email:         "ana.lima@example.com",
			FavoriteColor: "Red",
			Birthday:      date(1990, time.May, 17),
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            uuid.NewString(),
			FirstName:     "Kenji",
			LastName:      "Watanabe",
			Email:         "kenji.watanabe@example.com",
			FavoriteColor: "Green",
			Birthday:      date(1988, time.November, 2),
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            uuid.NewString(),
			FirstName:     "Maya",
			LastName:      "Okafor",
			Email:         "maya.okafor@example.com",
			FavoriteColor: "Purple",
			Birthday:      date(2001, time.July, 29),
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}

// seedNotes returns demo notes for local development.
func seedNotes() []notes.Note {
	now := time.Now().UTC()
	due := now.Add(72 * time.Hour).Truncate(time.Hour)

	return []notes.Note{
		{
			ID:        uuid.NewString(),
			Title:     "Welcome",
			Content:   "Sign in through /auth/google or /auth/github and send the token as a Bearer header.",
			Author:    "contactbook",
			Tags:      []string{"getting-started"},
			Priority:  notes.PriorityMedium,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          uuid.NewString(),
			Title:       "Quarterly review",
			Content:     "Collect contact updates before the review meeting.",
			Author:      "Ana Lima",
			Tags:        []string{"work", "planning"},
			IsImportant: true,
			DueDate:     &due,
			Priority:    notes.PriorityHigh,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:        uuid.NewString(),
			Title:     "Birthday gifts",
			Content:   "Maya likes purple; Kenji collects vinyl.",
			Author:    "Happiness Ncube",
			Tags:      []string{"personal"},
			Priority:  notes.PriorityLow,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}
