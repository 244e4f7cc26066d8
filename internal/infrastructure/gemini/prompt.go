package gemini

import (
	"fmt"

	"repair-bot/internal/domain/entity"
)

func judgePrompt(ind entity.IndicatorSet) string {
	return fmt.Sprintf(`You are an expert infrastructure inspector analyzing before/after images for defect repairs.

TASK: Determine if the AFTER image shows a GENUINE REPAIR compared to the BEFORE image.

CONTEXT from Computer Vision Analysis:
- Rust-like color reduction: %.1f%%
- Brightness change: %.1f
- Surface uniformity improvement: %.1f

CRITICAL INSTRUCTIONS:
1. A REPAIR is ONLY when you see CLEAR visual evidence like:
   - Rust/corrosion removed (brown/orange -> clean metal/paint)
   - Cracks or damage filled/fixed
   - New paint covering old damage
   - Surface now smooth vs previously rough/damaged

2. NOT A REPAIR if you see:
   - Just lighting differences (shadows, brightness)
   - Same defect still visible
   - Camera angle changes
   - Minor color variations without actual repair work
   - No visible improvement in damage

3. Respond in this EXACT format:
   - Start with "REPAIRED" or "NOT_REPAIRED"
   - Then briefly explain why (1 sentence)

BEFORE image (showing defect):`, ind.RustReduction, ind.BrightnessIncrease, ind.UniformityImprovement)
}

const proposePrompt = `You are an expert inspector. Compare these TWO images:
- Image 1: BEFORE (showing the defect/damage)
- Image 2: AFTER (potentially repaired)

YOUR TASK:
Look at the BEFORE image and identify ANY defect, damage, or abnormality:
- Broken parts (chair legs, pipes, structures)
- Cracks, fractures, breaks
- Rust, corrosion, discoloration
- Missing pieces, holes
- Worn surfaces, damage
- Bent, deformed items
- ANY visible problem

INSTRUCTIONS:
1. Identify the MAIN defect visible in the BEFORE image
2. Describe it clearly in ONE sentence
3. Estimate its location in the BEFORE image as percentages from top-left
   Format: x,y,width,height (each 0-100)
   Example: "20,50,30,40" means 20% from left, 50% from top, 30% wide, 40% tall

RESPONSE FORMAT:
DEFECT: [describe what's broken/damaged in BEFORE image]
LOCATION: x,y,width,height

If truly NO defect visible, respond: "NO_DEFECT"

Now compare the images:`
