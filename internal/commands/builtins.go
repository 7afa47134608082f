// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import "sync"

// =============================================================================
// CONTENT
// =============================================================================

// Content holds the static text and links the built-in commands print.
type Content struct {
	Bio       string
	Now       string
	Projects  string
	Skills    string
	Contact   string
	Education string

	ResumeURL   string
	GitHubURL   string
	LinkedInURL string
	Email       string
}

// DefaultContent returns the stock profile content.
func DefaultContent() Content {
	return Content{
		Bio: `
  Raghu - Data Engineer based in NYC
  Pronounced like the pasta sauce, just with a different accent.

  Currently working at HPN, setting up the data stack
  for affordable housing.
`,
		Now: `
  → Working at HPN on affordable housing data infrastructure
  → Building with FastAPI, OpenRouter & Pinecone
  → Exploring RAG patterns and LLM evaluations
`,
		Projects: `
  Projects I've worked on:

  › know-your-rights
    Backend engine with RAG, built with FastAPI, OpenRouter & Pinecone

  › chatraghu
    This terminal! Next.js frontend with Python API backend
    LLM-powered Q&A over my resume
`,
		Skills: `
  Languages:    Python, SQL, TypeScript, JavaScript
  Data:         dbt, BigQuery, Snowflake, Postgres, Pinecone
  Backend:      FastAPI, Flask, Next.js
  Infra:        GCP, Vercel, Docker, Redis
  ML/AI:        RAG, LangChain, OpenRouter, Embeddings
`,
		Contact: `
  › GitHub     github.com/raghunandan-r
  › LinkedIn   linkedin.com/in/raghudan
  › Email      raghunandan092@gmail.com
`,
		Education: `
  › MSc Data Science - Rochester Institute of Technology
  › Previously: Micron (intern), Freshworks, Lynk, BankBazaar, DXC
`,
		ResumeURL:   "/resume.pdf",
		GitHubURL:   "https://github.com/raghunandan-r",
		LinkedInURL: "https://www.linkedin.com/in/raghudan/",
		Email:       "raghunandan092@gmail.com",
	}
}

// =============================================================================
// BUILT-IN TABLE
// =============================================================================

// Builtins builds the command table for c.
func Builtins(c Content) *Table {
	// help renders from the finished table, so it is bound after construction.
	var table *Table

	static := func(text string) Handler {
		return func() Result { return Result{Output: text} }
	}

	table = NewTable([]Spec{
		{
			Name:        "help",
			Description: "Show available commands",
			Aliases:     []string{"?", "commands"},
			Handler:     func() Result { return Result{Output: table.HelpText()} },
		},
		{
			Name:        "whoami",
			Description: "Quick bio",
			Aliases:     []string{"about", "bio"},
			Shortcut:    true,
			Handler:     static(c.Bio),
		},
		{
			Name:        "now",
			Description: "What I'm currently working on",
			Aliases:     []string{"current"},
			Shortcut:    true,
			Handler:     static(c.Now),
		},
		{
			Name:        "projects",
			Description: "Notable projects",
			Aliases:     []string{"work", "portfolio"},
			Shortcut:    true,
			Handler:     static(c.Projects),
		},
		{
			Name:        "skills",
			Description: "Technical skills & tools",
			Aliases:     []string{"tech", "stack"},
			Handler:     static(c.Skills),
		},
		{
			Name:        "contact",
			Description: "How to reach me",
			Aliases:     []string{"social", "links"},
			Shortcut:    true,
			Handler:     static(c.Contact),
		},
		{
			Name:        "education",
			Description: "Education & experience",
			Aliases:     []string{"edu", "experience", "exp"},
			Handler:     static(c.Education),
		},
		{
			Name:        "resume",
			Description: "Open resume PDF",
			Aliases:     []string{"cv"},
			Handler: func() Result {
				return Result{Output: "  Opening resume...", Action: OpenURL(c.ResumeURL)}
			},
		},
		{
			Name:        "clear",
			Description: "Clear terminal history",
			Aliases:     []string{"cls", "reset"},
			Handler:     func() Result { return Result{Action: Clear()} },
		},
		{
			Name:        "github",
			Description: "Open GitHub profile",
			Handler: func() Result {
				return Result{Output: "  Opening GitHub...", Action: OpenURL(c.GitHubURL)}
			},
		},
		{
			Name:        "linkedin",
			Description: "Open LinkedIn profile",
			Handler: func() Result {
				return Result{Output: "  Opening LinkedIn...", Action: OpenURL(c.LinkedInURL)}
			},
		},
		{
			Name:        "email",
			Description: "Copy email address",
			Aliases:     []string{"mail"},
			Handler: func() Result {
				return Result{Output: "  Copied " + c.Email + " to clipboard.", Action: Copy(c.Email)}
			},
		},
	})
	return table
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in table for DefaultContent, built on first use.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = Builtins(DefaultContent())
	})
	return defaultTable
}
