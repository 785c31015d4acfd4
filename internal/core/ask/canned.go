package ask

// greetingResponse は挨拶クエリへの定型応答
const greetingResponse = `🙏 **Namaste!**

I'm your Yoga AI Assistant. I'm here to help you with all things yoga!

**I can help you with:**
• Yoga poses (asanas) and their benefits
• Breathing techniques (pranayama)
• Meditation and mindfulness practices
• Yoga for specific health goals (back pain, stress relief, flexibility)
• Different yoga styles (Hatha, Vinyasa, Ashtanga, etc.)
• Yoga philosophy and spiritual practices

**Try asking:**
• "What are the benefits of Surya Namaskar?"
• "How do I do a headstand safely?"
• "Yoga poses for lower back pain"
• "Breathing exercises for anxiety"

What would you like to know about yoga? 🧘‍♀️`

// offTopicResponse はヨガと無関係なクエリへの定型応答
const offTopicResponse = `🙏 **I'm specialized in Yoga!**

Your question doesn't appear to be about yoga.

I'm designed specifically to answer yoga-related questions. I can help with:
• Yoga poses and techniques
• Breathing exercises (pranayama)
• Meditation practices
• Health benefits of yoga
• Yoga for specific conditions
• Yoga philosophy and traditions

**Please ask me something related to yoga, and I'll be happy to help!** 🧘`

// genericSafetyResponse はカテゴリを特定できなかった unsafe クエリへの定型応答
const genericSafetyResponse = `⚠️ **IMPORTANT SAFETY NOTICE** ⚠️

Your question appears to mention a health condition that requires professional guidance.

**⚕️ Medical Disclaimer:**
This is not medical advice. Always consult your doctor, physiotherapist, or certified yoga therapist before starting any yoga practice, especially with pre-existing conditions.`
