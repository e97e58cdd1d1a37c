package categories

// Category is one entry of the fixed topic taxonomy. The taxonomy lives in
// code and is passed explicitly to the stages that consume it; it is never
// persisted or derived.
type Category struct {
	Slug        string
	Title       string
	Description string
}

// Default returns the standard taxonomy used for categorization and matching.
func Default() []Category {
	return []Category{
		{
			Slug:        "generative-ai-models",
			Title:       "Generative AI Models & Releases",
			Description: "Updates on major foundational models, including GPT-4o, Gemini, Claude 3, Llama 3, and Stable Diffusion.",
		},
		{
			Slug:        "ai-tools-applications",
			Title:       "AI Tools & Applications",
			Description: "Practical implementations of AI, such as coding assistants, local LLM runners, text-to-speech engines, and image generation interfaces.",
		},
		{
			Slug:        "programming-languages",
			Title:       "Programming Languages",
			Description: "Discussions on language updates and comparisons, covering Python, Rust, C++, Go, Mojo, and TypeScript.",
		},
		{
			Slug:        "software-engineering-devops",
			Title:       "Software Engineering & DevOps",
			Description: "Topics related to development workflows, version control (Git), databases (Postgres, SQLite), debugging, and system architecture.",
		},
		{
			Slug:        "web-development-browsers",
			Title:       "Web Development & Browsers",
			Description: "News regarding web standards, browser engines (Firefox, Chrome, Ladybird), and frontend technologies like CSS, HTML, and htmx.",
		},
		{
			Slug:        "open-source-community",
			Title:       "Open Source Community",
			Description: "Conversations about project forks (OpenTF, Valkey), maintainer challenges, licensing debates, and community-driven tools.",
		},
		{
			Slug:        "operating-systems",
			Title:       "Operating Systems",
			Description: "Updates on kernels and OS distributions, including Linux, Windows 11, macOS, and niche projects like Asahi Linux or SerenityOS.",
		},
		{
			Slug:        "cybersecurity-incidents",
			Title:       "Cybersecurity Incidents",
			Description: "Reports on major security breaches, backdoors (XZ Utils), data leaks (23andMe), and supply chain attacks.",
		},
		{
			Slug:        "hacking-security-research",
			Title:       "Hacking & Security Research",
			Description: "Technical discussions on exploits, reverse engineering, penetration testing, and security hardware like Flipper Zero.",
		},
		{
			Slug:        "privacy-encryption",
			Title:       "Privacy & Encryption",
			Description: "News regarding surveillance, end-to-end encryption tools (Signal), and privacy regulations like Chat Control.",
		},
		{
			Slug:        "big-tech-corporate-news",
			Title:       "Big Tech Corporate News",
			Description: "Updates on major technology companies, including antitrust lawsuits, board conflicts, and major acquisitions.",
		},
		{
			Slug:        "work-career-management",
			Title:       "Work, Career & Management",
			Description: "Discussions on the tech labor market, return-to-office mandates, layoffs, and hiring practices.",
		},
		{
			Slug:        "startups-venture-capital",
			Title:       "Startups & Venture Capital",
			Description: "Stories about founder experiences, fundraising, Y Combinator, and the startup ecosystem.",
		},
		{
			Slug:        "media-copyright-content",
			Title:       "Media, Copyright & Content",
			Description: "Debates on digital rights, AI copyright infringement (NYT vs. OpenAI), piracy, and streaming service policies.",
		},
		{
			Slug:        "semiconductors-chips",
			Title:       "Semiconductors & Chips",
			Description: "News on hardware manufacturing and design, covering Apple Silicon, Nvidia GPUs, TSMC, and RISC-V.",
		},
		{
			Slug:        "consumer-electronics",
			Title:       "Consumer Electronics",
			Description: "Launches and discussions of consumer hardware, including smartphones, VR/AR headsets, and Right to Repair initiatives.",
		},
		{
			Slug:        "space-exploration",
			Title:       "Space Exploration",
			Description: "Updates on aerospace missions, including SpaceX Starship, Voyager, the James Webb Telescope, and lunar landings.",
		},
		{
			Slug:        "physics-materials",
			Title:       "Physics & Materials",
			Description: "Scientific breakthroughs and debates, such as the LK-99 superconductor saga, fusion energy, and battery technology.",
		},
		{
			Slug:        "health-biotech-medicine",
			Title:       "Health, Biotech & Medicine",
			Description: "Developments in medical research, gene therapy, mental health studies, and disease eradication.",
		},
		{
			Slug:        "mathematics-theory",
			Title:       "Mathematics & Theory",
			Description: "Discussions on algorithmic breakthroughs, mathematical puzzles, scientific papers, and data visualization.",
		},
		{
			Slug:        "law-policy-regulation",
			Title:       "Law, Policy & Regulation",
			Description: "News on government legislation affecting tech, such as the EU AI Act, FCC rulings, and Net Neutrality.",
		},
		{
			Slug:        "geopolitics-global-affairs",
			Title:       "Geopolitics & Global Affairs",
			Description: "Discussions on how international conflicts, sanctions, and government censorship intersect with technology.",
		},
		{
			Slug:        "transportation-infrastructure",
			Title:       "Transportation & Infrastructure",
			Description: "Reports on vehicle safety (Boeing), electric vehicle adoption, and public infrastructure projects.",
		},
		{
			Slug:        "environment-energy",
			Title:       "Environment & Energy",
			Description: "Topics concerning climate change, renewable energy sources, and nuclear power developments.",
		},
		{
			Slug:        "obituaries",
			Title:       "Obituaries",
			Description: "Tributes to recently deceased notable figures in the tech and science communities.",
		},
		{
			Slug:        "gaming-game-dev",
			Title:       "Gaming & Game Dev",
			Description: "News on game engines (Unity, Godot), game development culture, and retro gaming ports.",
		},
		{
			Slug:        "graphics-design-ui-ux",
			Title:       "Graphics, Design & UI/UX",
			Description: "Updates on design tools (Blender), font creation, 3D rendering, and user interface trends.",
		},
		{
			Slug:        "retro-computing-history",
			Title:       "Retro Computing & History",
			Description: "Posts dedicated to vintage hardware restoration, historical codebases, and the history of computing.",
		},
		{
			Slug:        "show-hn-projects",
			Title:       `"Show HN" Projects`,
			Description: "Community submissions where creators share their own tools, apps, and side projects for feedback.",
		},
		{
			Slug:        "ask-hn-community-meta",
			Title:       `"Ask HN" & Community Meta`,
			Description: "Internal community discussions, including technical questions, career advice, and site announcements.",
		},
	}
}

// BySlug returns the category with the given slug, or nil if unknown.
func BySlug(slug string, cats []Category) *Category {
	for i := range cats {
		if cats[i].Slug == slug {
			return &cats[i]
		}
	}
	return nil
}

// Slugs returns just the slugs of the given categories.
func Slugs(cats []Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Slug
	}
	return out
}
