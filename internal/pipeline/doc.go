// Package pipeline implements the Markdown-to-HTML import pipeline.
//
// Each stage is a pure function so the ordering contract stays explicit:
//   - NormalizeLineEndings, then ProtectFences: fenced code becomes
//     CODEBLOCK_n placeholders and is never seen by later text passes
//   - NormalizeFormulas: \[...\] and trigger-bearing [...] spans become $$...$$
//   - ProtectMath: $$...$$ spans are shielded from Markdown escaping
//   - GoldmarkConverter.ToHTML: GFM, hard wraps, emoji, image dimensions
//   - RestoreMath and RepairResidualFences: placeholders and renderer
//     residue become canonical <pre><code class="language-X"> markup
//   - MathSupport.Inject: table style, MathJax config, loader and the
//     delayed bracket-rewrite bootstrap, skipped when already present
//
// Pipeline composes the stages. Word conversion lives in internal/docx and
// is not post-processed here.
package pipeline
