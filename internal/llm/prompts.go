package llm

const (
	// articleSummaryPrompt produces the 3-5 sentence abstractive summary.
	articleSummaryPrompt = `Summarize the following article in 3-5 sentences. Focus on the key points and main takeaways.
Do not prefix the output with "-" or "This article contains..." or anything else - output just
the article summary and that's it.

Article:
%s`

	// commentsSummaryPrompt summarizes the discussion, ignoring tangents.
	commentsSummaryPrompt = `Here is a dump of Hacker News comments with author names and timestamps. Summarize the comments
in a 3-5 sentence summary. Don't mention any usernames. Ignore the irrelevant or tangential
comments, just summarize the comments related to the article.

Comments:
%s`

	// categorizePrompt selects the applicable taxonomy slugs.
	categorizePrompt = `I have the text of an article and a set of predefined categories. Analyze the
article text and give me the list of categories this article belongs to.
Return just the category slugs, as a comma-delimited list, nothing else.

Here are the categories, in the format: (slug, description)
%s

Here is the text of the article:
%s`

	// scoresPrompt derives the three base scores jointly from body and comments.
	scoresPrompt = `Analyze the following article and its Hacker News comments to produce scores.

ARTICLE:
%s

COMMENTS:
%s

Based on the article content and comments, provide the following scores (0-5, floats allowed):

1. controversial: How controversial is the discussion in the comments?
   - 0 = No controversy, everyone agrees
   - 2-3 = Some differing opinions, mild disagreement
   - 5 = Heated arguments, strong opposing viewpoints

2. trustworthy: How trustworthy does the article appear based on the comments?
   - 0 = Comments indicate major factual errors, unreliable source
   - 2-3 = Some concerns raised but generally acceptable
   - 5 = Comments confirm accuracy, highly trusted source

3. sentiment: What is the overall sentiment/attitude of the article?
   - 0 = Very negative, pessimistic, critical
   - 2-3 = Neutral, balanced
   - 5 = Very positive, optimistic, enthusiastic`

	// confidencePrompt compares a generated summary against its source body
	// to detect unsupported claims.
	confidencePrompt = `Here is an article and a machine-generated summary of it.

ARTICLE:
%s

SUMMARY:
%s

Provide a confidence score (0-5, floats allowed) for how faithfully the summary
represents the article:
- 0 = The summary contradicts the article or is full of unsupported claims
- 2-3 = The summary is mostly accurate with some stretches
- 5 = Every claim in the summary is directly supported by the article`

	// relevancePrompt scores an article summary against a subscriber's
	// free-text interest profile.
	relevancePrompt = `Determine how relevant an article is to a reader based on their description.

READER DESCRIPTION (what the reader is interested in):
%s

ARTICLE SUMMARY:
%s

Based on the reader's interests and the article summary, provide a relevance score.

Score guidelines:
- 0.0 = Completely irrelevant, no connection to reader interests
- 1.0-2.0 = Tangentially related, might be of minor interest
- 2.5-3.5 = Moderately relevant, covers topics the reader cares about
- 4.0-4.5 = Highly relevant, directly addresses reader interests
- 5.0 = Perfect match, exactly what the reader is looking for`
)
